package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/devfeed/internal/flagx"
	"github.com/dmitrijs2005/devfeed/internal/timex"
)

// jsonConfig is the on-disk shape of the configuration file. Durations
// accept both "15m" strings and integer nanoseconds.
type jsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	RedisAddr                    string         `json:"redis_addr"`
	NatsURL                      string         `json:"nats_url"`
	OTLPEndpoint                 string         `json:"otlp_endpoint"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	LogLevel                     string         `json:"log_level"`
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJSON overlays the file named by -c / -config, if any. Fields that are
// absent from the file keep their current values.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIf(&cfg.EndpointAddrGRPC, jc.EndpointAddrGRPC)
	setIf(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setIf(&cfg.SecretKey, jc.SecretKey)
	if jc.AccessTokenValidityDuration.Duration > 0 {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.RefreshTokenValidityDuration.Duration > 0 {
		cfg.RefreshTokenValidityDuration = jc.RefreshTokenValidityDuration.Duration
	}
	setIf(&cfg.RedisAddr, jc.RedisAddr)
	setIf(&cfg.NatsURL, jc.NatsURL)
	setIf(&cfg.OTLPEndpoint, jc.OTLPEndpoint)
	setIf(&cfg.S3RootUser, jc.S3RootUser)
	setIf(&cfg.S3RootPassword, jc.S3RootPassword)
	setIf(&cfg.S3Bucket, jc.S3Bucket)
	setIf(&cfg.S3Region, jc.S3Region)
	setIf(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setIf(&cfg.LogLevel, jc.LogLevel)
	return nil
}
