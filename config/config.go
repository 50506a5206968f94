// Package config loads session settings from a configuration file and FIX_ prefixed
// environment variables, and turns them into session options.
//
// Example file:
//
//	sender_comp_id: ALICE
//	target_comp_id: BROKER
//	begin_string: FIX.4.4
//	role: initiator
//	heartbeat_interval: 30s
//	store:
//	  type: badger
//	  path: /var/lib/fix/alice
//	log:
//	  level: info
//
// Every key can be overridden by an environment variable, e.g. FIX_HEARTBEAT_INTERVAL=10s
// or FIX_STORE_PATH=/tmp/store.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/arloliu/go-fix/fix"
	"github.com/arloliu/go-fix/logger"
	"github.com/arloliu/go-fix/session"
	"github.com/arloliu/go-fix/store"
)

// EnvPrefix is the prefix of environment variables that override file settings.
const EnvPrefix = "FIX"

// Session roles.
const (
	RoleInitiator = "initiator"
	RoleAcceptor  = "acceptor"
)

// Store types.
const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreBadger = "badger"
)

var (
	// ErrInvalidRole indicates a role other than "initiator" or "acceptor".
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidStore indicates an unknown store type or a badger store without a path.
	ErrInvalidStore = errors.New("invalid store settings")

	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Settings holds the settings of one session.
type Settings struct {
	SenderCompID string `mapstructure:"sender_comp_id"`
	TargetCompID string `mapstructure:"target_comp_id"`
	BeginString  string `mapstructure:"begin_string"`
	Role         string `mapstructure:"role"`

	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	TestRequestGrace  time.Duration `mapstructure:"test_request_grace"`
	TimeoutGrace      time.Duration `mapstructure:"timeout_grace"`
	LogonTimeout      time.Duration `mapstructure:"logon_timeout"`
	LogoutTimeout     time.Duration `mapstructure:"logout_timeout"`
	ResendTimeout     time.Duration `mapstructure:"resend_timeout"`

	MaxPending   int  `mapstructure:"max_pending"`
	MaxMalformed int  `mapstructure:"max_malformed"`
	ResetOnLogon bool `mapstructure:"reset_on_logon"`

	Store StoreSettings `mapstructure:"store"`
	Log   LogSettings   `mapstructure:"log"`
}

// StoreSettings selects the message store.
type StoreSettings struct {
	// Type is "none", "memory" or "badger".
	Type string `mapstructure:"type"`
	// Path is the badger directory. An empty path keeps the badger database in memory.
	Path string `mapstructure:"path"`
}

// LogSettings configures the session logger.
type LogSettings struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `mapstructure:"level"`
	// Console selects the human-readable console output instead of JSON.
	Console bool `mapstructure:"console"`
}

// Load reads settings from the file at path, which may be YAML, JSON or TOML, and applies
// environment overrides. An empty path loads defaults and environment variables only.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sender_comp_id", "")
	v.SetDefault("target_comp_id", "")
	v.SetDefault("begin_string", fix.FIX44.BeginString())
	v.SetDefault("role", RoleInitiator)
	v.SetDefault("heartbeat_interval", session.DefaultHeartbeatInterval)
	v.SetDefault("test_request_grace", session.DefaultTestRequestGrace)
	v.SetDefault("timeout_grace", session.DefaultTimeoutGrace)
	v.SetDefault("logon_timeout", session.DefaultLogonTimeout)
	v.SetDefault("logout_timeout", session.DefaultLogoutTimeout)
	v.SetDefault("resend_timeout", session.DefaultResendTimeout)
	v.SetDefault("max_pending", session.DefaultMaxPending)
	v.SetDefault("max_malformed", session.DefaultMaxMalformed)
	v.SetDefault("reset_on_logon", false)
	v.SetDefault("store.type", StoreMemory)
	v.SetDefault("store.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)
}

// ID returns the session identity.
func (s *Settings) ID() (session.ID, error) {
	version, err := fix.ParseVersion([]byte(s.BeginString))
	if err != nil {
		return session.ID{}, fmt.Errorf("begin_string %q: %w", s.BeginString, err)
	}

	return session.ID{SenderCompID: s.SenderCompID, TargetCompID: s.TargetCompID, Version: version}, nil
}

// Options returns the session options for the settings, excluding the store and logger.
func (s *Settings) Options() ([]session.Option, error) {
	var role session.Option
	switch strings.ToLower(s.Role) {
	case RoleInitiator, "":
		role = session.WithInitiator()
	case RoleAcceptor:
		role = session.WithAcceptor()
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, s.Role)
	}

	return []session.Option{
		role,
		session.WithHeartbeatInterval(s.HeartbeatInterval),
		session.WithTestRequestGrace(s.TestRequestGrace),
		session.WithTimeoutGrace(s.TimeoutGrace),
		session.WithLogonTimeout(s.LogonTimeout),
		session.WithLogoutTimeout(s.LogoutTimeout),
		session.WithResendTimeout(s.ResendTimeout),
		session.WithMaxPending(s.MaxPending),
		session.WithMaxMalformed(s.MaxMalformed),
		session.WithResetOnLogon(s.ResetOnLogon),
	}, nil
}

// Logger creates the logger described by the log settings, writing to stdout.
func (s *Settings) Logger() (logger.Logger, error) {
	level, err := parseLevel(s.Log.Level)
	if err != nil {
		return nil, err
	}

	return logger.NewSlogWithWriter(os.Stdout, level, false, s.Log.Console), nil
}

// OpenStore opens the configured message store. The returned close function releases it
// and is never nil. A "none" store returns a nil store, so every resend is a gap fill.
func (s *Settings) OpenStore(l logger.Logger) (session.MessageStore, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(s.Store.Type) {
	case StoreNone:
		return nil, noop, nil
	case StoreMemory, "":
		return store.NewMemory(), noop, nil
	case StoreBadger:
		b, err := store.OpenBadger(s.Store.Path, l)
		if err != nil {
			return nil, noop, err
		}

		return b, b.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown type %q", ErrInvalidStore, s.Store.Type)
	}
}

// NewSession creates a session from the settings with its logger and store. Sequence numbers
// saved in a badger store are restored. The returned close function releases the store.
func (s *Settings) NewSession() (*session.Session, func() error, error) {
	id, err := s.ID()
	if err != nil {
		return nil, nil, err
	}

	opts, err := s.Options()
	if err != nil {
		return nil, nil, err
	}

	l, err := s.Logger()
	if err != nil {
		return nil, nil, err
	}

	ms, closeStore, err := s.OpenStore(l)
	if err != nil {
		return nil, nil, err
	}

	opts = append(opts, session.WithLogger(l), session.WithMessageStore(ms))
	sess, err := session.New(id, opts...)
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}

	if _, err := sess.RestoreSeqNums(); err != nil {
		_ = closeStore()
		return nil, nil, err
	}

	return sess, closeStore, nil
}

func parseLevel(level string) (logger.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DebugLevel, nil
	case "info", "":
		return logger.InfoLevel, nil
	case "warn", "warning":
		return logger.WarnLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	default:
		return logger.InfoLevel, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
	}
}
