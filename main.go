// @title zvote API
// @version 1.0
// @description Backend API for approval and majority judgment voting

// @securityDefinitions.apikey VoterToken
// @in header
// @name x-voter-token
package main

import (
	_ "github.com/jeanbottein/zvote/docs"

	"github.com/jeanbottein/zvote/api"
	"github.com/jeanbottein/zvote/logging"
	"github.com/spf13/viper"
)

func main() {
	logging.BoostrapLogger()

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := api.ReadConfig()

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}
