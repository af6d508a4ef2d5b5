package actors

import (
	"os"

	"github.com/spf13/viper"
	"eppie/engine/library"
)

// InitConfig sets up our Viper config object
func InitConfig(config *viper.Viper) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
	config.SetDefault("rootDir", homeDir+"/eppie/")
	config.SetConfigType("yaml")
	config.SetConfigFile(config.GetString("rootDir") + "config.yaml")
	err = config.ReadInConfig()
	if err != nil {
		library.LogCLI(err.Error(), 4)
	}
	config.SetDefault("blockExplorer", "https://blockstream.info/testnet/api")
	config.SetDefault("ethereumExplorer", "https://api-sepolia.etherscan.io/api")
	config.SetDefault("ethereumApiKey", "")
	config.SetDefault("decStorage", "https://testnet.eppie.io/api")
	config.SetDefault("bitcoinFeeSatoshis", int64(1000))
	config.SetDefault("explorerRetryAttempts", 3)
	config.SetDefault("explorerBackoffMs", 500)
	config.SetDefault("explorerBackoffCapMs", 4000)
	config.SetDefault("logLevel", 4)
	// Create our working directory and config file if not exist
	initRootDir(config)
	library.Touch(config.GetString("rootDir") + "config.yaml")
	err = config.WriteConfig()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
}

func initRootDir(conf *viper.Viper) {
	_, err := os.Stat(conf.GetString("rootDir"))
	if os.IsNotExist(err) {
		err = os.Mkdir(conf.GetString("rootDir"), 0755)
		if err != nil {
			library.LogCLI(err, 0)
		}
	}
}

var conf *viper.Viper

func MakeOrGetConfig() *viper.Viper {
	return conf
}

func SetConfig(config *viper.Viper) {
	conf = config
}
