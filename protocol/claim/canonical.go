package claim

import "strings"

// NameSuffix is the fixed protocol suffix every canonical name carries
// exactly once.
const NameSuffix = ".test"

// CanonicalizeName maps user input to the registered form: trimmed,
// lowercased, spaces and '+' removed, suffix appended unless already
// present. Blank input stays empty and gets no suffix.
func CanonicalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "+", "")
	if name == "" {
		return ""
	}
	if !strings.HasSuffix(name, NameSuffix) {
		name += NameSuffix
	}
	return name
}
