package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ionspid/taxassign/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Assign AssignConfig `yaml:"assign" mapstructure:"assign"`
	Filter FilterConfig `yaml:"filter" mapstructure:"filter"`
	Taxdb  TaxdbConfig  `yaml:"taxdb" mapstructure:"taxdb"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// AssignConfig configures the assignment pipeline.
type AssignConfig struct {
	Method            string  `yaml:"method" mapstructure:"method"`
	Tool              string  `yaml:"tool" mapstructure:"tool"`
	Workers           int     `yaml:"workers" mapstructure:"workers"`
	MinIdentity       float64 `yaml:"min_identity" mapstructure:"min_identity"`
	MinCoverage       float64 `yaml:"min_coverage" mapstructure:"min_coverage"`
	MaxEValue         float64 `yaml:"max_evalue" mapstructure:"max_evalue"`
	MinBitScore       float64 `yaml:"min_bit_score" mapstructure:"min_bit_score"`
	TopHits           int     `yaml:"top_hits" mapstructure:"top_hits"`
	ConsensusFraction float64 `yaml:"consensus_fraction" mapstructure:"consensus_fraction"`
	MinWeightShare    float64 `yaml:"min_weight_share" mapstructure:"min_weight_share"`
}

// Thresholds converts the assignment parameters to their model form.
func (c AssignConfig) Thresholds() model.Thresholds {
	return model.Thresholds{
		MinIdentity:       c.MinIdentity,
		MinCoverage:       c.MinCoverage,
		MaxEValue:         c.MaxEValue,
		MinBitScore:       c.MinBitScore,
		TopHits:           c.TopHits,
		ConsensusFraction: c.ConsensusFraction,
		MinWeightShare:    c.MinWeightShare,
	}
}

// FilterConfig configures the standalone hit filter.
type FilterConfig struct {
	MinIdentity    float64 `yaml:"min_identity" mapstructure:"min_identity"`
	MinLength      int     `yaml:"min_length" mapstructure:"min_length"`
	RemoveSelfHits bool    `yaml:"remove_self_hits" mapstructure:"remove_self_hits"`
	KeepBestHit    bool    `yaml:"keep_best_hit" mapstructure:"keep_best_hit"`
}

// TaxdbConfig configures the lineage database backend.
type TaxdbConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	MaxHits   int     `yaml:"max_hits" mapstructure:"max_hits"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TAXASSIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("assign.method", "best_hit")
	v.SetDefault("assign.tool", "blast")
	v.SetDefault("assign.workers", 4)
	v.SetDefault("assign.min_identity", 70.0)
	v.SetDefault("assign.min_coverage", 50.0)
	v.SetDefault("assign.max_evalue", 1e-5)
	v.SetDefault("assign.min_bit_score", 50.0)
	v.SetDefault("assign.top_hits", 5)
	v.SetDefault("assign.consensus_fraction", 0.6)
	v.SetDefault("assign.min_weight_share", 0.5)
	v.SetDefault("filter.min_identity", 90.0)
	v.SetDefault("filter.min_length", 50)
	v.SetDefault("filter.remove_self_hits", true)
	v.SetDefault("filter.keep_best_hit", false)
	v.SetDefault("taxdb.driver", "sqlite")
	v.SetDefault("taxdb.path", "taxassign.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("server.max_hits", 100000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a run mode depends on, collecting every
// problem so the operator can fix them in one pass.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "assign":
		if _, err := model.ParseMethod(c.Assign.Method); err != nil {
			problems = append(problems, "assign.method must be one of best_hit, threshold, lca, weighted, consensus")
		}
		if c.Assign.Workers < 1 || c.Assign.Workers > 256 {
			problems = append(problems, "assign.workers must be between 1 and 256")
		}
	case "taxdb":
		switch c.Taxdb.Driver {
		case "sqlite":
			if c.Taxdb.Path == "" {
				problems = append(problems, "taxdb.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Taxdb.DatabaseURL == "" {
				problems = append(problems, "taxdb.database_url is required for the postgres driver")
			}
		default:
			problems = append(problems, "taxdb.driver must be sqlite or postgres")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RateLimit <= 0 {
			problems = append(problems, "server.rate_limit must be > 0")
		}
		if c.Server.MaxHits < 1 {
			problems = append(problems, "server.max_hits must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
