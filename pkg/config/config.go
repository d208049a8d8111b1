// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string
	EnvFile  string

	// Global bot identity; BOT_ID_<gid> overrides per tenant.
	BotID string

	// OAuth (login flow lives outside this process; we only need to know it is on)
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURI  string
	LoginURL          string

	// Bearer tokens from an OIDC issuer (optional second identity source)
	Issuer   string
	Audience string
	JWKSURL  string

	// Role lookup
	DiscordBotToken string
	DiscordAPIURL   string

	RedisURL       string
	SessionTTL     time.Duration
	RequestTimeout time.Duration

	// Treat "Everyone"/"EVERYONE" as the whitelist sentinel too.
	WhitelistEveryoneFold bool
}

// UsingOAuth mirrors how the viewer has always decided to gate logs:
// all three OAuth client settings must be present.
func (c Config) UsingOAuth() bool {
	return c.OAuthClientID != "" && c.OAuthClientSecret != "" && c.OAuthRedirectURI != ""
}

func Load() Config {
	envFile := env("ENV_FILE", ".env")
	_ = godotenv.Load(envFile)
	cfg := Config{
		Env:                   env("LOGVIEWER_ENV", "dev"),
		LogLevel:              env("LOG_LEVEL", ""),
		HTTPAddr:              env("HOST", "127.0.0.1") + ":" + env("PORT", "8000"),
		EnvFile:               envFile,
		BotID:                 env("BOT_ID", ""),
		OAuthClientID:         env("OAUTH2_CLIENT_ID", ""),
		OAuthClientSecret:     env("OAUTH2_CLIENT_SECRET", ""),
		OAuthRedirectURI:      env("OAUTH2_REDIRECT_URI", ""),
		LoginURL:              env("LOGIN_URL", "/login"),
		Issuer:                env("OIDC_ISSUER", ""),
		Audience:              env("OIDC_AUDIENCE", ""),
		JWKSURL:               env("JWKS_URL", ""),
		DiscordBotToken:       env("DISCORD_BOT_TOKEN", ""),
		DiscordAPIURL:         env("DISCORD_API_URL", "https://discord.com/api/v10"),
		RedisURL:              env("REDIS_URL", ""),
		SessionTTL:            envDur("SESSION_TTL_SEC", 7*24*3600) * time.Second,
		RequestTimeout:        envDur("REQUEST_TIMEOUT_SEC", 10) * time.Second,
		WhitelistEveryoneFold: envBool("WHITELIST_EVERYONE_FOLD", false),
	}
	if cfg.UsingOAuth() && cfg.BotID == "" {
		log.Println("[WARN] OAuth enabled but BOT_ID not set; every log will fail the bot_id check unless BOT_ID_<gid> is set")
	}
	return cfg
}

// Namespace returns the flat key/value namespace tenants are discovered from:
// the env file overlaid by the process environment.
func Namespace(envFile string) map[string]string {
	ns := map[string]string{}
	if vals, err := godotenv.Read(envFile); err == nil {
		for k, v := range vals {
			ns[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			ns[kv[:i]] = kv[i+1:]
		}
	}
	return ns
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("[WARN] %s=%q is not a boolean, using %v", k, v, def)
	}
	return def
}

// envDur reads a whole number of units (the caller multiplies by the unit).
// Unparseable or non-positive values fall back to def.
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && i > 0 {
			return time.Duration(i)
		}
		log.Printf("[WARN] %s=%q is not a positive integer, using %d", k, v, def)
	}
	return time.Duration(def)
}
