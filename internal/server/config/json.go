package config

import (
	"encoding/json"
	"os"

	"github.com/okutsen/authsvc/internal/flagx"
	"github.com/okutsen/authsvc/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Interval fields use timex.Duration, which accepts both string
// values such as "15m" and integer nanoseconds. After unmarshalling, set
// fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	GoogleClientID               string         `json:"google_client_id"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	CORSAllowedOrigins           []string       `json:"cors_allowed_origins"`
	CookieSecure                 *bool          `json:"cookie_secure"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c/-config command-line
// flags; when absent, no JSON file is loaded. Unset fields keep their
// previous values.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return
	}

	if jc.EndpointAddr != "" {
		config.EndpointAddr = jc.EndpointAddr
	}
	if jc.DatabaseDSN != "" {
		config.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.GoogleClientID != "" {
		config.GoogleClientID = jc.GoogleClientID
	}
	if jc.SecretKey != "" {
		config.SecretKey = jc.SecretKey
	}
	if jc.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = jc.RefreshTokenValidityDuration.Duration
	}
	if len(jc.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = jc.CORSAllowedOrigins
	}
	if jc.CookieSecure != nil {
		config.CookieSecure = *jc.CookieSecure
	}
}
