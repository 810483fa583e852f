package config

import "time"

type DBDriver string

const (
	DriverPostgres DBDriver = "postgres"
	DriverMySQL    DBDriver = "mysql"
)

type Database struct {
	Driver   DBDriver `mapstructure:"DATABASE_DRIVER" default:"postgres"`
	Host     string   `mapstructure:"DATABASE_HOST" default:"localhost"`
	Port     int      `mapstructure:"DATABASE_PORT" default:"5432"`
	Name     string   `mapstructure:"DATABASE_NAME" default:"labinv"`
	User     string   `mapstructure:"DATABASE_USER" default:"postgres"`
	Password string   `mapstructure:"DATABASE_PASSWORD" default:"labinv"`
	SSLMode  string   `mapstructure:"DATABASE_SSLMODE" default:"disable"`
	MaxOpen  int      `mapstructure:"DATABASE_MAX_OPEN" default:"20"`
	MaxIdle  int      `mapstructure:"DATABASE_MAX_IDLE" default:"5"`
}

type Redis struct {
	// Enabled false runs a single instance with in-process events and
	// in-memory rate limits.
	Enabled  bool   `mapstructure:"REDIS_ENABLED" default:"true"`
	Host     string `mapstructure:"REDIS_HOST" default:"127.0.0.1"`
	Port     int    `mapstructure:"REDIS_PORT" default:"6379"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB" default:"0"`
}

type Server struct {
	Platform string `mapstructure:"PLATFORM" default:"labinv"`
	Service  string `mapstructure:"SERVICE" default:"api"`
	Port     int    `mapstructure:"WEB_PORT" default:"8080"`
	Env      string `mapstructure:"ENV" default:"dev"`
	WebURL   string `mapstructure:"WEB_URL" default:"http://localhost:5173"`
	// NodeID seeds request numbers, 0-1023, unique per instance.
	NodeID int64 `mapstructure:"NODE_ID" default:"1"`
}

type Auth struct {
	JWTSecret           string        `mapstructure:"JWT_SECRET" default:"labinv-dev-secret"`
	TokenTTL            time.Duration `mapstructure:"JWT_TTL" default:"24h"`
	Issuer              string        `mapstructure:"JWT_ISSUER" default:"labinv"`
	// BootstrapAdminEmail registers as admin instead of student.
	BootstrapAdminEmail string        `mapstructure:"BOOTSTRAP_ADMIN_EMAIL"`
	LoginRateLimit      int           `mapstructure:"LOGIN_RATE_LIMIT" default:"10"`
	LoginRateWindow     time.Duration `mapstructure:"LOGIN_RATE_WINDOW" default:"15m"`
}

type RPC struct {
	PubChem RPCPubChem `mapstructure:",squash"`
}

type RPCPubChem struct {
	Addr string `mapstructure:"PUBCHEM_ADDR" default:"https://pubchem.ncbi.nlm.nih.gov"`
}

type Log struct {
	LogPath  string `mapstructure:"LOG_PATH" default:"./info.log"`
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
}

type Trace struct {
	Version         string `mapstructure:"TRACE_VERSION" default:"0.0.1"`
	TraceEndpoint   string `mapstructure:"TRACE_TRACEENDPOINT" default:""`
	MetricEndpoint  string `mapstructure:"TRACE_METRICENDPOINT" default:""`
	TraceProject    string `mapstructure:"TRACE_TRACEPROJECT" default:""`
	TraceInstanceID string `mapstructure:"TRACE_TRACEINSTANCEID" default:""`
	TraceAK         string `mapstructure:"TRACE_TRACEAK" default:""`
	TraceSK         string `mapstructure:"TRACE_TRACESK" default:""`
	Stdout          bool   `mapstructure:"TRACE_STDOUT" default:"false"`
}

type Mail struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT" default:"587"`
	User     string `mapstructure:"SMTP_USER"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM" default:"labinv@localhost"`
	// Workers bounds concurrent SMTP sessions.
	Workers    int           `mapstructure:"MAIL_WORKERS" default:"4"`
	RateLimit  int           `mapstructure:"MAIL_RATE_LIMIT" default:"30"`
	RateWindow time.Duration `mapstructure:"MAIL_RATE_WINDOW" default:"1h"`
}

func (m Mail) Enabled() bool {
	return m.Host != ""
}

type Workflow struct {
	// EnforceStock rejects an issuance that would take available stock below
	// zero. When false, stock is decremented unconditionally.
	EnforceStock bool `mapstructure:"WORKFLOW_ENFORCE_STOCK" default:"true"`
	// RestockOnReturn adds the issued amount back to available stock when an
	// issued item is returned.
	RestockOnReturn bool `mapstructure:"WORKFLOW_RESTOCK_ON_RETURN" default:"false"`
	// ActivityRetention is the default age used by prune-logs.
	ActivityRetention time.Duration `mapstructure:"ACTIVITY_RETENTION" default:"2160h"`
}
