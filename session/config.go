package session

import (
	"errors"
	"time"

	"github.com/arloliu/go-fix/logger"
)

// Default session settings.
const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultTestRequestGrace  = 6 * time.Second
	DefaultTimeoutGrace      = 30 * time.Second
	DefaultLogonTimeout      = 10 * time.Second
	DefaultLogoutTimeout     = 10 * time.Second
	DefaultResendTimeout     = 10 * time.Second
	DefaultMaxPending        = 1024
	DefaultMaxMalformed      = 5
)

// Config represents the configuration parameters of a FIX session.
type Config struct {
	// isAcceptor indicates whether the session waits for the counterparty's Logon (true)
	// or initiates the logon itself (false).
	// Defaults to false (initiator).
	isAcceptor bool

	// heartbeatInterval is the HeartBtInt (108) sent on Logon. A Heartbeat is emitted when
	// nothing was sent for this long. It should be between 1 second and 1 hour.
	// Defaults to 30 seconds.
	heartbeatInterval time.Duration

	// testRequestGrace is added to heartbeatInterval before a Test Request is sent on a
	// silent counterparty. It should be between 0 and 1 hour.
	// Defaults to 6 seconds.
	testRequestGrace time.Duration

	// timeoutGrace is how long a Test Request may stay unanswered before the session fails.
	// It should be between 1 second and 1 hour.
	// Defaults to 30 seconds.
	timeoutGrace time.Duration

	// logonTimeout is how long to wait for the Logon reply. It should be between 1 and 300 seconds.
	// Defaults to 10 seconds.
	logonTimeout time.Duration

	// logoutTimeout is how long to wait for the Logout reply. It should be between 1 and 300 seconds.
	// Defaults to 10 seconds.
	logoutTimeout time.Duration

	// resendTimeout is how long an outstanding Resend Request may go without in-sequence
	// progress before the missing range is requested again. It should be between 1 second and 1 hour.
	// Defaults to 10 seconds.
	resendTimeout time.Duration

	// maxPending bounds the number of out-of-sequence messages held while a gap is backfilled.
	// Defaults to 1024.
	maxPending int

	// maxMalformed is the number of consecutive malformed messages tolerated before the session fails.
	// Defaults to 5.
	maxMalformed int

	// resetOnLogon makes Logon reset both sequence numbers to 1 and send ResetSeqNumFlag (141=Y).
	// Defaults to false.
	resetOnLogon bool

	// store persists outgoing messages for resend. A nil store answers every Resend Request with a gap fill.
	store MessageStore

	// clock returns the current time for traffic timestamps.
	clock func() time.Time

	// logger provides a logger instance for session events and errors.
	logger logger.Logger
}

// NewConfig creates a session configuration with defaults overridden by opts.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		heartbeatInterval: DefaultHeartbeatInterval,
		testRequestGrace:  DefaultTestRequestGrace,
		timeoutGrace:      DefaultTimeoutGrace,
		logonTimeout:      DefaultLogonTimeout,
		logoutTimeout:     DefaultLogoutTimeout,
		resendTimeout:     DefaultResendTimeout,
		maxPending:        DefaultMaxPending,
		maxMalformed:      DefaultMaxMalformed,
		clock:             time.Now,
		logger:            logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// IsAcceptor returns whether the session is in the acceptor role.
func (cfg *Config) IsAcceptor() bool { return cfg.isAcceptor }

// HeartbeatInterval returns the heartbeat interval.
func (cfg *Config) HeartbeatInterval() time.Duration { return cfg.heartbeatInterval }

// TestRequestGrace returns the grace period before a Test Request is sent.
func (cfg *Config) TestRequestGrace() time.Duration { return cfg.testRequestGrace }

// TimeoutGrace returns how long a Test Request may stay unanswered.
func (cfg *Config) TimeoutGrace() time.Duration { return cfg.timeoutGrace }

// LogonTimeout returns the logon timeout.
func (cfg *Config) LogonTimeout() time.Duration { return cfg.logonTimeout }

// LogoutTimeout returns the logout timeout.
func (cfg *Config) LogoutTimeout() time.Duration { return cfg.logoutTimeout }

// ResendTimeout returns how long a Resend Request may stall before it is re-issued.
func (cfg *Config) ResendTimeout() time.Duration { return cfg.resendTimeout }

// MaxPending returns the out-of-sequence queue bound.
func (cfg *Config) MaxPending() int { return cfg.maxPending }

// MaxMalformed returns the consecutive malformed message threshold.
func (cfg *Config) MaxMalformed() int { return cfg.maxMalformed }

// ResetOnLogon returns whether Logon resets sequence numbers.
func (cfg *Config) ResetOnLogon() bool { return cfg.resetOnLogon }

// Option represents a functional option for configuring a session.
type Option interface {
	apply(*Config) error
}

type optFunc struct {
	name      string
	applyFunc func(*Config) error
}

func (o *optFunc) apply(cfg *Config) error { return o.applyFunc(cfg) }

func newOptFunc(name string, f func(*Config) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

// WithInitiator sets the session to the initiator role, which sends the first Logon.
//
// The default role is initiator.
func WithInitiator() Option {
	return newOptFunc("WithInitiator", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.isAcceptor = false

		return nil
	})
}

// WithAcceptor sets the session to the acceptor role, which answers the counterparty's Logon
// from the Disconnected state.
func WithAcceptor() Option {
	return newOptFunc("WithAcceptor", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.isAcceptor = true

		return nil
	})
}

// WithHeartbeatInterval sets the heartbeat interval. It should be whole seconds between 1 second and 1 hour.
func WithHeartbeatInterval(val time.Duration) Option {
	return newOptFunc("WithHeartbeatInterval", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < time.Second || val > time.Hour {
			return errors.New("heartbeat interval is out of range [1s, 1h]")
		}
		if val%time.Second != 0 {
			return errors.New("heartbeat interval must be whole seconds")
		}
		cfg.heartbeatInterval = val

		return nil
	})
}

// WithTestRequestGrace sets the grace period added to the heartbeat interval before a Test Request is sent.
// It should be between 0 and 1 hour.
func WithTestRequestGrace(val time.Duration) Option {
	return newOptFunc("WithTestRequestGrace", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < 0 || val > time.Hour {
			return errors.New("test request grace is out of range [0, 1h]")
		}
		cfg.testRequestGrace = val

		return nil
	})
}

// WithTimeoutGrace sets how long a Test Request may stay unanswered. It should be between 1 second and 1 hour.
func WithTimeoutGrace(val time.Duration) Option {
	return newOptFunc("WithTimeoutGrace", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < time.Second || val > time.Hour {
			return errors.New("timeout grace is out of range [1s, 1h]")
		}
		cfg.timeoutGrace = val

		return nil
	})
}

// WithLogonTimeout sets the logon timeout. It should be between 1 and 300 seconds.
func WithLogonTimeout(val time.Duration) Option {
	return newOptFunc("WithLogonTimeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < time.Second || val > 300*time.Second {
			return errors.New("logon timeout is out of range [1, 300] seconds")
		}
		cfg.logonTimeout = val

		return nil
	})
}

// WithLogoutTimeout sets the logout timeout. It should be between 1 and 300 seconds.
func WithLogoutTimeout(val time.Duration) Option {
	return newOptFunc("WithLogoutTimeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < time.Second || val > 300*time.Second {
			return errors.New("logout timeout is out of range [1, 300] seconds")
		}
		cfg.logoutTimeout = val

		return nil
	})
}

// WithResendTimeout sets how long an outstanding Resend Request may go without in-sequence
// progress before Tick requests the missing range again. It should be between 1 second and 1 hour.
func WithResendTimeout(val time.Duration) Option {
	return newOptFunc("WithResendTimeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if val < time.Second || val > time.Hour {
			return errors.New("resend timeout is out of range [1s, 1h]")
		}
		cfg.resendTimeout = val

		return nil
	})
}

// WithMaxPending sets the number of out-of-sequence messages held while a gap is backfilled.
// It should be between 1 and 1,000,000.
func WithMaxPending(size int) Option {
	return newOptFunc("WithMaxPending", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if size < 1 || size > 1_000_000 {
			return errors.New("max pending is out of range [1, 1000000]")
		}
		cfg.maxPending = size

		return nil
	})
}

// WithMaxMalformed sets the number of consecutive malformed messages tolerated before the session fails.
// It should be between 0 and 1000; 0 fails on the first malformed message.
func WithMaxMalformed(count int) Option {
	return newOptFunc("WithMaxMalformed", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if count < 0 || count > 1000 {
			return errors.New("max malformed is out of range [0, 1000]")
		}
		cfg.maxMalformed = count

		return nil
	})
}

// WithResetOnLogon makes Logon reset both sequence numbers to 1 and request the same from the counterparty.
func WithResetOnLogon(val bool) Option {
	return newOptFunc("WithResetOnLogon", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.resetOnLogon = val

		return nil
	})
}

// WithMessageStore sets the store used to persist outgoing messages and to serve Resend Requests.
func WithMessageStore(store MessageStore) Option {
	return newOptFunc("WithMessageStore", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.store = store

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if l == nil {
			return errors.New("logger is nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithClock sets the time source used to timestamp traffic. Tick still uses the time passed to it.
func WithClock(clock func() time.Time) Option {
	return newOptFunc("WithClock", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if clock == nil {
			return errors.New("clock is nil")
		}
		cfg.clock = clock

		return nil
	})
}
