package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays Config fields from environment variables.
//
// Supported variables:
//
//	ADDRESS                      HTTP bind address
//	DATABASE_DSN                 PostgreSQL DSN
//	GOOGLE_CLIENT_ID             OAuth client id
//	JWT_SECRET_KEY               access token signing secret
//	JWT_ACCESS_EXPIRATION_TIME   access token lifetime, seconds
//	JWT_REFRESH_EXPIRATION_TIME  refresh token lifetime, seconds
//	CORS_ORIGINS                 comma-separated origin allow-list
//	COOKIE_SECURE                "true"/"false"
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("GOOGLE_CLIENT_ID"); ok {
		config.GoogleClientID = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("JWT_ACCESS_EXPIRATION_TIME"); ok {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			config.AccessTokenValidityDuration = time.Duration(seconds) * time.Second
		}
	}
	if v, ok := os.LookupEnv("JWT_REFRESH_EXPIRATION_TIME"); ok {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			config.RefreshTokenValidityDuration = time.Duration(seconds) * time.Second
		}
	}
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		origins := make([]string, 0)
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				origins = append(origins, origin)
			}
		}
		config.CORSAllowedOrigins = origins
	}
	if v, ok := os.LookupEnv("COOKIE_SECURE"); ok {
		if secure, err := strconv.ParseBool(v); err == nil {
			config.CookieSecure = secure
		}
	}
}
