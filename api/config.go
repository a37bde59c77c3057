package api

import (
	"sync"

	"github.com/jeanbottein/zvote/logging"
	"github.com/spf13/viper"
)

type Config struct {
	StorageConfig
	ServerConfig
	FeatureConfig
}

type StorageConfig struct {
	TableNameVotes     string
	TableNameOptions   string
	TableNameJudgments string
	TableNameApprovals string
	TableNameSummaries string
	UseMemory          bool
}

type ServerConfig struct {
	Port int
}

// FeatureConfig gates what the deployment offers. Clients read it back from
// the meta endpoint instead of hardcoding capabilities.
type FeatureConfig struct {
	MaxOptions       int
	PublicVotes      bool
	UnlistedVotes    bool
	PrivateVotes     bool
	ApprovalVoting   bool
	MajorityJudgment bool
	LiveBallot       bool
	EnvelopeBallot   bool
}

var settingsOnce sync.Once

func ReadConfig() *Config {

	var conf = &Config{
		StorageConfig: StorageConfig{
			TableNameVotes:     getStringOrDefault("storage.TableNameVotes", "Votes"),
			TableNameOptions:   getStringOrDefault("storage.TableNameOptions", "VoteOptions"),
			TableNameJudgments: getStringOrDefault("storage.TableNameJudgments", "Judgments"),
			TableNameApprovals: getStringOrDefault("storage.TableNameApprovals", "Approvals"),
			TableNameSummaries: getStringOrDefault("storage.TableNameSummaries", "MjSummaries"),
			UseMemory:          getBoolOrDefault("storage.UseMemory", false),
		},
		ServerConfig: ServerConfig{
			Port: getIntOrDefault("server.port", 8080),
		},
		FeatureConfig: FeatureConfig{
			MaxOptions:       getIntOrDefault("features.MaxOptions", 20),
			PublicVotes:      getBoolOrDefault("features.PublicVotes", true),
			UnlistedVotes:    getBoolOrDefault("features.UnlistedVotes", false),
			PrivateVotes:     getBoolOrDefault("features.PrivateVotes", false),
			ApprovalVoting:   getBoolOrDefault("features.ApprovalVoting", true),
			MajorityJudgment: getBoolOrDefault("features.MajorityJudgment", true),
			LiveBallot:       getBoolOrDefault("features.LiveBallot", true),
			EnvelopeBallot:   getBoolOrDefault("features.EnvelopeBallot", true),
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getBoolOrDefault(name string, def bool) bool {
	if viper.IsSet(name) {
		v := viper.GetBool(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
