package config

// DBConfig contains the Postgres settings for the audit trail. Leaving Host empty disables it.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:""`
	Port     int    `env:"PORT"     envDefault:"5432" validate:"min=1,max=65535"`
	User     string `env:"USER"     envDefault:"grailed"`
	Password string `env:"PASSWORD" envDefault:"grailed"`
	Name     string `env:"NAME"     envDefault:"grailed_admin"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	// RunMigrationsOnStart applies the embedded schema during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// Enabled reports whether a database is configured.
func (c DBConfig) Enabled() bool { return c.Host != "" }

// RedisConfig contains the Redis settings for login sessions. Leaving URI empty keeps sessions
// in memory.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:""`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Enabled reports whether any Redis topology is configured.
func (c RedisConfig) Enabled() bool {
	return c.URI != "" || (c.UseSentinel && len(c.SentinelNodes) > 0) || (c.UseCluster && len(c.ClusterNodes) > 0)
}
