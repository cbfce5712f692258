package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidBudget      = errors.New("time budget must not be negative")
	ErrInvalidWorkers     = errors.New("worker count must be positive")
	ErrUnknownCacheDriver = errors.New("unknown cache driver")
	ErrUnknownOpponent    = errors.New("unknown self-play opponent")
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"

	OpponentEngine = "engine"
	OpponentRandom = "random"
)

// defaultTimeBudget is applied before decoding so that an explicit zero
// in the file survives.
const defaultTimeBudget = 100 * time.Millisecond

type EngineConfig struct {
	TimeBudget time.Duration `yaml:"time_budget" env:"UTTT_TIME_BUDGET"`
	Seed       int64         `yaml:"seed" env:"UTTT_SEED"`
	Workers    int           `yaml:"workers" env:"UTTT_WORKERS" env-default:"1"`
}

type ServerConfig struct {
	Addr          string        `yaml:"addr" env:"UTTT_SERVER_ADDR" env-default:":8080"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"UTTT_SESSION_TTL" env-default:"30m"`
	CleanupPeriod time.Duration `yaml:"cleanup_period" env:"UTTT_CLEANUP_PERIOD" env-default:"1m"`
}

type CacheConfig struct {
	Driver    string        `yaml:"driver" env:"UTTT_CACHE_DRIVER" env-default:"memory"`
	RedisAddr string        `yaml:"redis_addr" env:"UTTT_REDIS_ADDR" env-default:"localhost:6379"`
	TTL       time.Duration `yaml:"ttl" env:"UTTT_CACHE_TTL" env-default:"1h"`
}

type SelfPlayConfig struct {
	Games    int    `yaml:"games" env:"UTTT_SELF_PLAY_GAMES" env-default:"100"`
	Parallel int    `yaml:"parallel" env:"UTTT_SELF_PLAY_PARALLEL" env-default:"4"`
	Opponent string `yaml:"opponent" env:"UTTT_SELF_PLAY_OPPONENT" env-default:"engine"`
}

type Config struct {
	LogLevel string         `yaml:"log_level" env:"UTTT_LOG_LEVEL" env-default:"info"`
	Engine   EngineConfig   `yaml:"engine"`
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
	SelfPlay SelfPlayConfig `yaml:"self_play"`
}

// New reads the YAML file at cfgPath, if any, and then applies environment
// overrides and defaults for unset fields.
func New(cfgPath string) (Config, error) {
	cfg := Config{
		Engine: EngineConfig{TimeBudget: defaultTimeBudget},
	}
	if cfgPath != "" {
		if err := decodeFile(cfgPath, &cfg); err != nil {
			return Config{}, errors.WithMessagef(err, "read config file '%s'", cfgPath)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, errors.WithMessage(err, "read environment")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(cfgPath string, cfg *Config) error {
	file, err := os.Open(cfgPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return errors.WithMessage(err, "decode yaml")
	}
	return nil
}

func (c Config) validate() error {
	if c.Engine.TimeBudget < 0 {
		return errors.WithMessagef(ErrInvalidBudget, "got %s", c.Engine.TimeBudget)
	}
	if c.Engine.Workers < 1 {
		return errors.WithMessagef(ErrInvalidWorkers, "engine workers %d", c.Engine.Workers)
	}
	if c.SelfPlay.Parallel < 1 {
		return errors.WithMessagef(ErrInvalidWorkers, "self-play parallel %d", c.SelfPlay.Parallel)
	}
	switch c.Cache.Driver {
	case CacheMemory, CacheRedis:
	default:
		return errors.WithMessagef(ErrUnknownCacheDriver, "driver '%s'", c.Cache.Driver)
	}
	switch c.SelfPlay.Opponent {
	case OpponentEngine, OpponentRandom:
	default:
		return errors.WithMessagef(ErrUnknownOpponent, "opponent '%s'", c.SelfPlay.Opponent)
	}
	return nil
}
