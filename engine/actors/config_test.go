package actors

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestInitConfig(t *testing.T) {
	rootDir := t.TempDir() + "/"
	conf := viper.New()
	conf.Set("rootDir", rootDir)
	InitConfig(conf)

	if got := conf.GetString("blockExplorer"); got != "https://blockstream.info/testnet/api" {
		t.Errorf("blockExplorer = %q", got)
	}
	if got := conf.GetString("ethereumExplorer"); got != "https://api-sepolia.etherscan.io/api" {
		t.Errorf("ethereumExplorer = %q", got)
	}
	if got := conf.GetString("decStorage"); got != "https://testnet.eppie.io/api" {
		t.Errorf("decStorage = %q", got)
	}
	if got := conf.GetInt64("bitcoinFeeSatoshis"); got != 1000 {
		t.Errorf("bitcoinFeeSatoshis = %d", got)
	}
	if got := conf.GetInt("explorerRetryAttempts"); got != 3 {
		t.Errorf("explorerRetryAttempts = %d", got)
	}
	if got := conf.GetInt("explorerBackoffMs"); got != 500 {
		t.Errorf("explorerBackoffMs = %d", got)
	}
	if got := conf.GetInt("explorerBackoffCapMs"); got != 4000 {
		t.Errorf("explorerBackoffCapMs = %d", got)
	}

	if _, err := os.Stat(rootDir + "config.yaml"); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
}

func TestInitConfigKeepsExplicitSettings(t *testing.T) {
	rootDir := t.TempDir() + "/"
	conf := viper.New()
	conf.Set("rootDir", rootDir)
	conf.Set("blockExplorer", "http://127.0.0.1:3002")
	InitConfig(conf)

	if got := conf.GetString("blockExplorer"); got != "http://127.0.0.1:3002" {
		t.Fatalf("explicit setting overridden: %q", got)
	}
}

func TestSetAndGetConfig(t *testing.T) {
	conf := viper.New()
	SetConfig(conf)
	if MakeOrGetConfig() != conf {
		t.Fatal("stored config not returned")
	}
}
