package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/viper"

	"eppie/chains/bitcoin"
	"eppie/chains/ethereum"
	"eppie/engine/actors"
	"eppie/engine/library"
	"eppie/identity"
	"eppie/messaging/decstore"
	"eppie/protocol/keys"
)

// Resolves a decentralized address from the command line to its public
// key, mostly useful for poking at a store or explorer by hand.
//
//	eppie <eppie|bitcoin|ethereum> <address-segment>
func main() {
	// Various aspects of this application require global and local settings. To keep things
	// clean and tidy we put these settings in a Viper configuration.
	conf := viper.New()

	// Now we initialise this configuration with basic settings that are required on startup.
	actors.InitConfig(conf)
	// make the config accessible globally
	actors.SetConfig(conf)

	if len(os.Args) != 3 {
		fmt.Println("usage: eppie <eppie|bitcoin|ethereum> <address-segment>")
		os.Exit(1)
	}
	network := parseNetwork(os.Args[1])
	if network == library.NetworkUnsupported {
		fmt.Printf("unknown network %q\n", os.Args[1])
		os.Exit(1)
	}

	store := decstore.FromConfig(actors.MakeOrGetConfig(), nil)
	resolver := identity.NewComposite(map[library.NetworkType]identity.Resolver{
		library.NetworkEppie:    identity.NewEppieResolver(store),
		library.NetworkBitcoin:  identity.NewBitcoinResolver(bitcoin.FromConfig(actors.MakeOrGetConfig(), &chaincfg.TestNet3Params, nil)),
		library.NetworkEthereum: identity.NewEthereumResolver(ethereum.FromConfig(actors.MakeOrGetConfig(), nil)),
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	email := library.Email{
		Original:             os.Args[2] + "@" + network.String(),
		Network:              network,
		DecentralizedAddress: os.Args[2],
	}
	pub, err := resolver.ResolvePublicKey(ctx, email)
	if err != nil {
		library.LogCLI(err.Error(), 0)
		os.Exit(1)
	}
	fmt.Println(keys.Encode(pub))
}

func parseNetwork(s string) library.NetworkType {
	switch s {
	case "eppie":
		return library.NetworkEppie
	case "bitcoin":
		return library.NetworkBitcoin
	case "ethereum":
		return library.NetworkEthereum
	}
	return library.NetworkUnsupported
}
