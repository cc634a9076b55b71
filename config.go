package tokenguard

import (
	"errors"
	"strings"
	"time"
)

// Config groups all recognized deployment options. Instances are configured
// during initialization and treated as immutable after [Builder.Build].
type Config struct {
	JWT       JWTConfig
	Rotation  RotationConfig
	Blacklist BlacklistConfig
	Transport TransportConfig
	Metrics   MetricsConfig
	Audit     AuditConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig carries the signing key material and claim expectations shared
// by every component. Keys are initialized at startup and never rotated at
// runtime; deployments that rotate keys restart with new configuration.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
ROTATION CONFIG
====================================
*/

// RotationConfig controls refresh behavior. With RotateOnRefresh disabled
// the old refresh token is returned unchanged alongside each new access
// token; with BlacklistAfterRotation disabled consumed refresh tokens are
// not recorded, which also disables replay detection.
type RotationConfig struct {
	RotateOnRefresh        bool
	BlacklistAfterRotation bool
}

/*
====================================
BLACKLIST CONFIG
====================================
*/

// BlacklistConfig controls the revocation store. ReapInterval applies to
// the in-memory backend only; the Redis backend expires entries natively.
type BlacklistConfig struct {
	RedisPrefix  string
	ReapInterval time.Duration
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig tells the HTTP middleware where to find the token.
type TransportConfig struct {
	HeaderName   string
	SchemePrefix string
}

/*
====================================
METRICS / AUDIT CONFIG
====================================
*/

// MetricsConfig toggles the lock-free counter set.
type MetricsConfig struct {
	Enabled bool
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     time.Hour,
			RefreshTTL:    14 * 24 * time.Hour,
			SigningMethod: "hs256",
		},
		Rotation: RotationConfig{
			RotateOnRefresh:        true,
			BlacklistAfterRotation: true,
		},
		Blacklist: BlacklistConfig{
			RedisPrefix:  "tgbl",
			ReapInterval: time.Minute,
		},
		Transport: TransportConfig{
			HeaderName:   "Authorization",
			SchemePrefix: "Bearer",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = append([]byte(nil), cfg.JWT.PrivateKey...)
	out.JWT.PublicKey = append([]byte(nil), cfg.JWT.PublicKey...)
	return out
}

func validateConfig(cfg Config) error {
	if cfg.JWT.AccessTTL <= 0 {
		return errors.New("access TTL must be positive")
	}
	if cfg.JWT.RefreshTTL < cfg.JWT.AccessTTL {
		return errors.New("refresh TTL must be at least the access TTL")
	}
	if cfg.JWT.Leeway < 0 || cfg.JWT.Leeway > 2*time.Minute {
		return errors.New("leeway must be between 0 and 2 minutes")
	}
	if strings.TrimSpace(cfg.Transport.HeaderName) == "" {
		return errors.New("transport header name must not be empty")
	}
	if strings.TrimSpace(cfg.Transport.SchemePrefix) == "" {
		return errors.New("transport scheme prefix must not be empty")
	}
	if cfg.Rotation.BlacklistAfterRotation && !cfg.Rotation.RotateOnRefresh {
		return errors.New("blacklist-after-rotation requires rotate-on-refresh")
	}
	return nil
}
