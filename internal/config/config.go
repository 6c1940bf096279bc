package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/backend"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

// Storage drivers accepted by PROFILES_STORAGE.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// DefaultProfilesDirName is appended to the user's config directory when
// PROFILES_DIR is unset.
const DefaultProfilesDirName = "CitizenFX"

type RedisSettings struct {
	Address  string
	Password string
	DB       int
}

type ProfilesConfig struct {
	// One of StorageFile, StorageRedis or StorageMemory
	Storage  string
	Dir      string
	Secret   string
	RedisKey string
	// Parsed from SUGGESTED_PROFILES
	Suggested []models.Profile
}

type AuthBackendConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type IdentityConfig struct {
	SigningSecret string
	Issuer        string
	Audience      string
	AssertionTTL  time.Duration
	// Identifier keys vouched for with a signed assertion, e.g. "steam,ros"
	AssertionKeys []string
	// Microsoft refresh-token exchange for "live" identifiers; nil when not configured
	Microsoft *oauth2.Config
	// OIDC ID token verification for "xbl" identifiers; empty when not configured
	OIDCIssuer   string
	OIDCClientID string
}

type Config struct {
	// Server port
	Port        string
	Environment string
	LogLevel    string
	// Secret for the HS256 bearer tokens accepted by the host API
	JWTSecret     string
	RedisSettings RedisSettings
	Profiles      ProfilesConfig
	AuthBackend   AuthBackendConfig
	Identity      IdentityConfig
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PROFILES_STORAGE", StorageFile)
	viper.SetDefault("PROFILES_REDIS_KEY", "default")
	viper.SetDefault("AUTH_BACKEND_ENDPOINT", backend.DefaultEndpoint)
	viper.SetDefault("AUTH_BACKEND_TIMEOUT_SECONDS", 30)
	viper.SetDefault("IDENTITY_ISSUER", "scs-profile-manager")
	viper.SetDefault("IDENTITY_AUDIENCE", "scs-auth-backend")
	viper.SetDefault("IDENTITY_ASSERTION_TTL_SECONDS", 300)
	viper.SetDefault("IDENTITY_ASSERTION_KEYS", "steam,ros")
	viper.SetDefault("REDIS_ADDRESS", "localhost:6379")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Info().Msg("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(viper.GetViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	storage := strings.ToLower(v.GetString("PROFILES_STORAGE"))
	switch storage {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return nil, fmt.Errorf("invalid PROFILES_STORAGE %q", storage)
	}

	profilesDir := v.GetString("PROFILES_DIR")
	if profilesDir == "" && storage == StorageFile {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine profiles directory: %w", err)
		}
		profilesDir = filepath.Join(base, DefaultProfilesDirName)
	}

	profilesSecret := v.GetString("PROFILES_SECRET")
	if profilesSecret == "" {
		return nil, errors.New("PROFILES_SECRET must be set")
	}

	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == "" || jwtSecret == "a_very_secret_key_change_me" {
		log.Warn().Msg("Using an empty or default JWT secret. Set JWT_SECRET environment variable or in config file.")
	}

	suggested, err := ParseSuggestedProfiles(v.GetString("SUGGESTED_PROFILES"))
	if err != nil {
		return nil, err
	}

	timeoutSeconds := v.GetInt("AUTH_BACKEND_TIMEOUT_SECONDS")
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	ttlSeconds := v.GetInt("IDENTITY_ASSERTION_TTL_SECONDS")
	if ttlSeconds <= 0 {
		ttlSeconds = 300
	}

	var microsoftConfig *oauth2.Config
	if clientID := v.GetString("MICROSOFT_CLIENT_ID"); clientID != "" {
		endpoint := microsoft.AzureADEndpoint("consumers")
		if tokenURL := v.GetString("MICROSOFT_TOKEN_URL"); tokenURL != "" {
			endpoint.TokenURL = tokenURL
		}
		microsoftConfig = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: v.GetString("MICROSOFT_CLIENT_SECRET"),
			Scopes:       []string{"openid", "offline_access"},
			Endpoint:     endpoint,
		}
	}

	return &Config{
		Port:        v.GetString("APP_PORT"),
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		JWTSecret:   jwtSecret,
		RedisSettings: RedisSettings{
			Address:  v.GetString("REDIS_ADDRESS"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Profiles: ProfilesConfig{
			Storage:   storage,
			Dir:       profilesDir,
			Secret:    profilesSecret,
			RedisKey:  v.GetString("PROFILES_REDIS_KEY"),
			Suggested: suggested,
		},
		AuthBackend: AuthBackendConfig{
			Endpoint: v.GetString("AUTH_BACKEND_ENDPOINT"),
			Timeout:  time.Duration(timeoutSeconds) * time.Second,
		},
		Identity: IdentityConfig{
			SigningSecret: v.GetString("IDENTITY_SIGNING_SECRET"),
			Issuer:        v.GetString("IDENTITY_ISSUER"),
			Audience:      v.GetString("IDENTITY_AUDIENCE"),
			AssertionTTL:  time.Duration(ttlSeconds) * time.Second,
			AssertionKeys: splitList(v.GetString("IDENTITY_ASSERTION_KEYS")),
			Microsoft:     microsoftConfig,
			OIDCIssuer:    v.GetString("OIDC_ISSUER"),
			OIDCClientID:  v.GetString("OIDC_CLIENT_ID"),
		},
	}, nil
}

// ParseSuggestedProfiles parses "displayName|tileUri|key=value,key=value;..."
// into profiles. Blank entries are ignored.
func ParseSuggestedProfiles(raw string) ([]models.Profile, error) {
	var profiles []models.Profile
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid suggested profile %q: expected displayName|tileUri|identifiers", entry)
		}

		var identifiers []models.Identifier
		for _, pair := range strings.Split(parts[2], ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid identifier %q in suggested profile %q", pair, parts[0])
			}
			identifiers = append(identifiers, models.NewIdentifier(key, value))
		}
		if len(identifiers) == 0 {
			return nil, fmt.Errorf("suggested profile %q has no identifiers", parts[0])
		}
		profiles = append(profiles, models.NewProfile(parts[0], parts[1], identifiers...))
	}
	return profiles, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
