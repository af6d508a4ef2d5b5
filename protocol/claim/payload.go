package claim

import "strings"

const payloadPrefix = "claim-v1"

var fieldSanitizer = strings.NewReplacer("\r", "", "\n", "", "=", "")

// BuildPayloadV1 renders the deterministic claim-v1 payload:
//
//	claim-v1\nname=<canonical>\npublicKey=<key>
//
// LF separators only. The name is canonicalized; the key is taken
// as-is apart from sanitization, no trimming. Both fields have CR, LF
// and '=' stripped so neither can smuggle extra payload lines.
func BuildPayloadV1(name, publicKey string) string {
	return payloadPrefix +
		"\nname=" + fieldSanitizer.Replace(CanonicalizeName(name)) +
		"\npublicKey=" + fieldSanitizer.Replace(publicKey)
}
