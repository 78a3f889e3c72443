package config

import (
	"os"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset variables
// leave the current value untouched. Duration variables accept any
// time.ParseDuration string ("30m", "24h"); invalid values panic, since a
// silently misconfigured token lifetime is worse than a failed start.
func parseEnv(config *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		v, ok := os.LookupEnv(key)
		if !ok {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}

	setString(&config.EndpointAddrHTTP, "AUTH_ENDPOINT_ADDR")
	setString(&config.DatabaseDSN, "AUTH_DATABASE_DSN")
	setString(&config.RedisAddr, "AUTH_REDIS_ADDR")
	setString(&config.AccessPrivateKeyPath, "AUTH_ACCESS_PRIVATE_KEY")
	setString(&config.AccessPublicKeyPath, "AUTH_ACCESS_PUBLIC_KEY")
	setString(&config.RefreshPrivateKeyPath, "AUTH_REFRESH_PRIVATE_KEY")
	setString(&config.RefreshPublicKeyPath, "AUTH_REFRESH_PUBLIC_KEY")
	setDuration(&config.AccessTokenValidityDuration, "AUTH_ACCESS_TOKEN_TTL")
	setDuration(&config.RefreshTokenValidityDuration, "AUTH_REFRESH_TOKEN_TTL")
	setDuration(&config.TemporaryPasswordValidityDuration, "AUTH_TEMP_PASSWORD_TTL")
	setString(&config.NotificationEndpoint, "AUTH_NOTIFICATION_ENDPOINT")
	setString(&config.NotificationWelcomePath, "AUTH_NOTIFICATION_WELCOME_PATH")
	setString(&config.NotificationRecoverPath, "AUTH_NOTIFICATION_RECOVER_PATH")
	setString(&config.NotificationResetPath, "AUTH_NOTIFICATION_RESET_PATH")
}
