package config

import (
	game_constants "Trivium/constants/game"
	"Trivium/services/match"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds every runtime setting. Each flag can also be set through the
// environment variable of the same name in upper snake case (--postgres-user
// and POSTGRES_USER).
type Config struct {
	Port int
	Prod bool

	Store            string
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string
	PostgresSSLMode  string
	VerbosePostgres  bool
	MigratePostgres  bool

	RedisURL string

	// Key signs and verifies bearer tokens.
	Key         string
	TokenIssuer string

	UseHTTPS bool
	TLSCert  string
	TLSKey   string

	TriviaURL     string
	TriviaTimeout time.Duration

	AllowedOrigins []string
	PublicURL      string

	MatchMaxDuration      time.Duration
	WaitingRoomTTL        time.Duration
	FinishedRoomRetention time.Duration
	SweepInterval         time.Duration

	ShutdownTimeout time.Duration
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.IntVarP(&cfg.Port, "port", "p", 0, "port to listen on, 8080 or 443 with --use-https when unset (env: PORT)")
	fs.BoolVar(&cfg.Prod, "prod", false, "run gin in release mode (env: PROD)")

	fs.StringVar(&cfg.Store, "store", StorePostgres, "persistence backend: postgres or memory (env: STORE)")
	fs.StringVar(&cfg.PostgresUser, "postgres-user", "", "PostgreSQL user (env: POSTGRES_USER)")
	fs.StringVar(&cfg.PostgresPassword, "postgres-password", "", "PostgreSQL password (env: POSTGRES_PASSWORD)")
	fs.StringVar(&cfg.PostgresHost, "postgres-host", "localhost", "PostgreSQL host (env: POSTGRES_HOST)")
	fs.StringVar(&cfg.PostgresPort, "postgres-port", "5432", "PostgreSQL port (env: POSTGRES_PORT)")
	fs.StringVar(&cfg.PostgresDatabase, "postgres-database", "trivium", "PostgreSQL database (env: POSTGRES_DATABASE)")
	fs.StringVar(&cfg.PostgresSSLMode, "postgres-sslmode", "", "PostgreSQL sslmode, driver default when empty (env: POSTGRES_SSLMODE)")
	fs.BoolVar(&cfg.VerbosePostgres, "verbose-postgres", false, "log every SQL statement (env: VERBOSE_POSTGRES)")
	fs.BoolVar(&cfg.MigratePostgres, "migrate-postgres", false, "run schema migrations on startup (env: MIGRATE_POSTGRES)")

	fs.StringVar(&cfg.RedisURL, "redis-url", "", "Redis address or redis:// URL, caching disabled when empty (env: REDIS_URL)")

	fs.StringVar(&cfg.Key, "key", "", "secret used to sign bearer tokens (env: KEY)")
	fs.StringVar(&cfg.TokenIssuer, "token-issuer", "trivium", "expected token issuer (env: TOKEN_ISSUER)")

	fs.BoolVar(&cfg.UseHTTPS, "use-https", false, "serve HTTPS (env: USE_HTTPS)")
	fs.StringVar(&cfg.TLSCert, "tls-cert", "", "path to tls certificate (env: TLS_CERT)")
	fs.StringVar(&cfg.TLSKey, "tls-key", "", "path to tls keyfile (env: TLS_KEY)")

	fs.StringVar(&cfg.TriviaURL, "trivia-url", "https://opentdb.com/api.php", "trivia question source (env: TRIVIA_URL)")
	fs.DurationVar(&cfg.TriviaTimeout, "trivia-timeout", 10*time.Second, "trivia request timeout (env: TRIVIA_TIMEOUT)")

	fs.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", []string{"*"}, "CORS origins (env: ALLOWED_ORIGINS)")
	fs.StringVar(&cfg.PublicURL, "public-url", "http://localhost:3000", "client base URL used in invite links (env: PUBLIC_URL)")

	fs.DurationVar(&cfg.MatchMaxDuration, "match-max-duration", game_constants.DefaultMatchMaxDuration, "started matches older than this are finished (env: MATCH_MAX_DURATION)")
	fs.DurationVar(&cfg.WaitingRoomTTL, "waiting-room-ttl", game_constants.DefaultWaitingRoomTTL, "waiting rooms older than this are deleted (env: WAITING_ROOM_TTL)")
	fs.DurationVar(&cfg.FinishedRoomRetention, "finished-room-retention", game_constants.DefaultFinishedRoomRetention, "finished rooms older than this are deleted (env: FINISHED_ROOM_RETENTION)")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", game_constants.DefaultSweepInterval, "how often the retention sweep runs (env: SWEEP_INTERVAL)")

	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for in-flight requests (env: SHUTDOWN_TIMEOUT)")
}

// ApplyEnv copies environment values into every flag that was not set on
// the command line.
func ApplyEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return fmt.Errorf("unknown store %q (use %s or %s)", c.Store, StorePostgres, StoreMemory)
	}
	if c.Key == "" {
		return errors.New("a token secret must be provided with --key or KEY")
	}
	if c.UseHTTPS && (c.TLSCert == "" || c.TLSKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided with --use-https")
	}
	if c.SweepInterval <= 0 {
		return errors.New("--sweep-interval must be positive")
	}
	return nil
}

// ListenPort defaults to 443 over HTTPS and 8080 otherwise.
func (c *Config) ListenPort() int {
	if c.Port != 0 {
		return c.Port
	}
	if c.UseHTTPS {
		return 443
	}
	return 8080
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ListenPort())
}

func (c *Config) PostgresDSN() string {
	dsn := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   c.PostgresHost + ":" + c.PostgresPort,
		Path:   "/" + c.PostgresDatabase,
	}
	if c.PostgresSSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {c.PostgresSSLMode}}.Encode()
	}
	return dsn.String()
}

func (c *Config) RetentionPolicy() match.RetentionPolicy {
	return match.RetentionPolicy{
		MatchMaxDuration:      c.MatchMaxDuration,
		WaitingRoomTTL:        c.WaitingRoomTTL,
		FinishedRoomRetention: c.FinishedRoomRetention,
	}
}
