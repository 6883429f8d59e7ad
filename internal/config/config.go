// Package config loads application configuration from environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultScopes is the OAuth scope set requested for every channel grant.
var DefaultScopes = []string{"https://www.googleapis.com/auth/youtube.upload"}

// Config holds the application configuration loaded from environment
// variables.
type Config struct {
	ListenAddr     string
	DBPath         string
	ReloadInterval time.Duration

	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURL  string
	OAuthScopes       []string

	MaxVideoSizeMB     int64
	MaxThumbnailSizeMB int64

	RefreshTimeout time.Duration
	UploadTimeout  time.Duration
}

// clientSecretsFile mirrors the Google client-secrets JSON layout: the
// relevant block sits under either "installed" or "web".
type clientSecretsFile struct {
	Installed *clientSecrets `json:"installed"`
	Web       *clientSecrets `json:"web"`
}

type clientSecrets struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Load reads configuration from environment variables and returns a
// validated Config.
//
// OAuth client credentials come from VIDGATE_OAUTH_CLIENT_ID and
// VIDGATE_OAUTH_CLIENT_SECRET, or from the Google client-secrets JSON file
// named by VIDGATE_CLIENT_SECRETS_FILE (explicit env vars win). One of the
// two sources is required. Optional variables with defaults:
// VIDGATE_LISTEN_ADDR (127.0.0.1:8080), VIDGATE_DB_PATH (vidgate.db),
// VIDGATE_RELOAD_INTERVAL (5m), VIDGATE_OAUTH_REDIRECT_URL,
// VIDGATE_MAX_VIDEO_SIZE_MB (500), VIDGATE_MAX_THUMBNAIL_SIZE_MB (10),
// VIDGATE_REFRESH_TIMEOUT (30s), VIDGATE_UPLOAD_TIMEOUT (30m).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         "127.0.0.1:8080",
		DBPath:             "vidgate.db",
		ReloadInterval:     5 * time.Minute,
		OAuthScopes:        DefaultScopes,
		MaxVideoSizeMB:     500,
		MaxThumbnailSizeMB: 10,
		RefreshTimeout:     30 * time.Second,
		UploadTimeout:      30 * time.Minute,
	}

	if v, ok := os.LookupEnv("VIDGATE_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("VIDGATE_DB_PATH"); ok {
		cfg.DBPath = v
	}

	var err error
	if cfg.ReloadInterval, err = durationEnv("VIDGATE_RELOAD_INTERVAL", cfg.ReloadInterval); err != nil {
		return nil, err
	}
	if cfg.RefreshTimeout, err = durationEnv("VIDGATE_REFRESH_TIMEOUT", cfg.RefreshTimeout); err != nil {
		return nil, err
	}
	if cfg.UploadTimeout, err = durationEnv("VIDGATE_UPLOAD_TIMEOUT", cfg.UploadTimeout); err != nil {
		return nil, err
	}
	if cfg.MaxVideoSizeMB, err = sizeEnv("VIDGATE_MAX_VIDEO_SIZE_MB", cfg.MaxVideoSizeMB); err != nil {
		return nil, err
	}
	if cfg.MaxThumbnailSizeMB, err = sizeEnv("VIDGATE_MAX_THUMBNAIL_SIZE_MB", cfg.MaxThumbnailSizeMB); err != nil {
		return nil, err
	}

	if secretsPath := os.Getenv("VIDGATE_CLIENT_SECRETS_FILE"); secretsPath != "" {
		id, secret, err := loadClientSecrets(secretsPath)
		if err != nil {
			return nil, err
		}
		cfg.OAuthClientID = id
		cfg.OAuthClientSecret = secret
	}
	if v := os.Getenv("VIDGATE_OAUTH_CLIENT_ID"); v != "" {
		cfg.OAuthClientID = v
	}
	if v := os.Getenv("VIDGATE_OAUTH_CLIENT_SECRET"); v != "" {
		cfg.OAuthClientSecret = v
	}
	if cfg.OAuthClientID == "" || cfg.OAuthClientSecret == "" {
		return nil, fmt.Errorf("oauth client credentials required: set VIDGATE_OAUTH_CLIENT_ID and VIDGATE_OAUTH_CLIENT_SECRET, or VIDGATE_CLIENT_SECRETS_FILE")
	}

	cfg.OAuthRedirectURL = fmt.Sprintf("http://%s/auth/callback", cfg.ListenAddr)
	if v, ok := os.LookupEnv("VIDGATE_OAUTH_REDIRECT_URL"); ok {
		cfg.OAuthRedirectURL = v
	}

	if v, ok := os.LookupEnv("VIDGATE_OAUTH_SCOPES"); ok && v != "" {
		var scopes []string
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				scopes = append(scopes, s)
			}
		}
		if len(scopes) > 0 {
			cfg.OAuthScopes = scopes
		}
	}

	return cfg, nil
}

// MaxVideoBytes returns the video size limit in bytes.
func (c *Config) MaxVideoBytes() int64 { return c.MaxVideoSizeMB << 20 }

// MaxThumbnailBytes returns the thumbnail size limit in bytes.
func (c *Config) MaxThumbnailBytes() int64 { return c.MaxThumbnailSizeMB << 20 }

func loadClientSecrets(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read client secrets file %q: %w", path, err)
	}

	var file clientSecretsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", "", fmt.Errorf("parse client secrets file %q: %w", path, err)
	}

	secrets := file.Installed
	if secrets == nil {
		secrets = file.Web
	}
	if secrets == nil || secrets.ClientID == "" || secrets.ClientSecret == "" {
		return "", "", fmt.Errorf("client secrets file %q: missing installed/web client_id and client_secret", path)
	}

	return secrets.ClientID, secrets.ClientSecret, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}

func sizeEnv(key string, fallback int64) (int64, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return parsed, nil
}
