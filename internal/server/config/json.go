package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/jrafaels/test-fauth/internal/flagx"
	"github.com/jrafaels/test-fauth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its non-zero fields are copied into the runtime
// Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP                  string         `json:"endpoint_addr_http"`
	DatabaseDSN                       string         `json:"database_dsn"`
	RedisAddr                         string         `json:"redis_addr"`
	AccessPrivateKeyPath              string         `json:"access_private_key_path"`
	AccessPublicKeyPath               string         `json:"access_public_key_path"`
	RefreshPrivateKeyPath             string         `json:"refresh_private_key_path"`
	RefreshPublicKeyPath              string         `json:"refresh_public_key_path"`
	AccessTokenValidityDuration       timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration      timex.Duration `json:"refresh_token_validity_duration"`
	TemporaryPasswordValidityDuration timex.Duration `json:"temporary_password_validity_duration"`
	NotificationEndpoint              string         `json:"notification_endpoint"`
	NotificationWelcomePath           string         `json:"notification_welcome_path"`
	NotificationRecoverPath           string         `json:"notification_recover_path"`
	NotificationResetPath             string         `json:"notification_reset_path"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when neither
// is set, no JSON file is loaded. Only fields present in the file override the
// current values. If the file cannot be read or contains invalid JSON, the
// function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.RedisAddr, c.RedisAddr)
	overlayString(&config.AccessPrivateKeyPath, c.AccessPrivateKeyPath)
	overlayString(&config.AccessPublicKeyPath, c.AccessPublicKeyPath)
	overlayString(&config.RefreshPrivateKeyPath, c.RefreshPrivateKeyPath)
	overlayString(&config.RefreshPublicKeyPath, c.RefreshPublicKeyPath)
	overlayDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	overlayDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	overlayDuration(&config.TemporaryPasswordValidityDuration, c.TemporaryPasswordValidityDuration)
	overlayString(&config.NotificationEndpoint, c.NotificationEndpoint)
	overlayString(&config.NotificationWelcomePath, c.NotificationWelcomePath)
	overlayString(&config.NotificationRecoverPath, c.NotificationRecoverPath)
	overlayString(&config.NotificationResetPath, c.NotificationResetPath)
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = time.Duration(v.Duration)
	}
}
