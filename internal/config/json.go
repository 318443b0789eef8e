package config

import (
	"encoding/json"
	"os"

	"github.com/goodbrews/accounts/internal/flagx"
	"github.com/goodbrews/accounts/internal/timex"
)

// jsonConfig is an intermediate DTO for reading JSON config files. It
// uses timex.Duration for interval fields, which parses both string
// values such as "15m" and integer nanoseconds. After unmarshalling,
// its fields are copied into the runtime Config.
type jsonConfig struct {
	DatabaseDSN         string         `json:"database_dsn"`
	SecretKey           string         `json:"secret_key"`
	AccessTokenValidity timex.Duration `json:"access_token_validity"`
	BcryptCost          int            `json:"bcrypt_cost"`
}

// parseJSON overlays configuration values from the JSON file named by
// the -c/-config flags, if any. Missing fields keep their current
// values. An unreadable or malformed file panics: starting with a half
// applied config is worse than not starting.
func parseJSON(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidity.Duration != 0 {
		config.AccessTokenValidity = c.AccessTokenValidity.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
}
