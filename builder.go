package tokenguard

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/fkilld/tokenguard/blacklist"
	"github.com/fkilld/tokenguard/jwt"
)

// Builder assembles an Engine step by step. Zero value is not usable;
// start from [New].
type Builder struct {
	config      Config
	redisClient redis.UniversalClient
	store       blacklist.Store
	credentials CredentialValidator
	auditSink   AuditSink
	built       bool
}

// New returns a Builder seeded with defaults. Callers must still provide
// signing key material before Build.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the builder's configuration wholesale. Zero-valued
// TTL and transport fields are backfilled from defaults so callers only
// set what they care about.
func (b *Builder) WithConfig(cfg Config) *Builder {
	defaults := defaultConfig()
	if cfg.JWT.AccessTTL == 0 {
		cfg.JWT.AccessTTL = defaults.JWT.AccessTTL
	}
	if cfg.JWT.RefreshTTL == 0 {
		cfg.JWT.RefreshTTL = defaults.JWT.RefreshTTL
	}
	if cfg.JWT.SigningMethod == "" {
		cfg.JWT.SigningMethod = defaults.JWT.SigningMethod
	}
	if cfg.Blacklist.RedisPrefix == "" {
		cfg.Blacklist.RedisPrefix = defaults.Blacklist.RedisPrefix
	}
	if cfg.Blacklist.ReapInterval == 0 {
		cfg.Blacklist.ReapInterval = defaults.Blacklist.ReapInterval
	}
	if cfg.Transport.HeaderName == "" {
		cfg.Transport.HeaderName = defaults.Transport.HeaderName
	}
	if cfg.Transport.SchemePrefix == "" {
		cfg.Transport.SchemePrefix = defaults.Transport.SchemePrefix
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = defaults.Audit.BufferSize
	}
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the blacklist with Redis instead of the in-process map.
// Ignored when WithBlacklistStore supplies a custom store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redisClient = client
	return b
}

// WithBlacklistStore injects a custom revocation store. Takes precedence
// over WithRedis.
func (b *Builder) WithBlacklistStore(store blacklist.Store) *Builder {
	b.store = store
	return b
}

// WithCredentialValidator enables Engine.Login.
func (b *Builder) WithCredentialValidator(v CredentialValidator) *Builder {
	b.credentials = v
	return b
}

// WithAuditSink enables the async audit trail, delivering events to sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles counter recording.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates configuration and wires the engine. A builder can build
// at most once.
func (b *Builder) Build() (*Engine, error) {
	if b == nil {
		return nil, ErrEngineNotReady
	}
	if b.built {
		return nil, errors.New("tokenguard: builder already used")
	}

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	manager, err := jwt.NewManager(jwt.Config{
		AccessTTL:     b.config.JWT.AccessTTL,
		RefreshTTL:    b.config.JWT.RefreshTTL,
		SigningMethod: jwt.SigningMethod(b.config.JWT.SigningMethod),
		PrivateKey:    b.config.JWT.PrivateKey,
		PublicKey:     b.config.JWT.PublicKey,
		Issuer:        b.config.JWT.Issuer,
		Audience:      b.config.JWT.Audience,
		Leeway:        b.config.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      cloneConfig(b.config),
		jwtManager:  manager,
		credentials: b.credentials,
		metrics:     NewMetrics(b.config.Metrics),
	}

	switch {
	case b.store != nil:
		engine.store = b.store
	case b.redisClient != nil:
		engine.store = blacklist.NewRedis(b.redisClient, b.config.Blacklist.RedisPrefix)
	default:
		mem := blacklist.NewMemory(b.config.Blacklist.ReapInterval)
		engine.store = mem
		engine.ownedStore = mem
	}

	if b.config.Audit.Enabled {
		sink := b.auditSink
		if sink == nil {
			sink = NoOpSink{}
		}
		engine.audit = newAuditDispatcher(b.config.Audit, sink)
	}

	b.built = true
	return engine, nil
}
