package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port    int       `mapstructure:"port"`
	DataDir string    `mapstructure:"data_dir"`
	Log     LogConfig `mapstructure:"log"`
	Sim     SimConfig `mapstructure:"sim"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"` // console or json
	Development bool   `mapstructure:"development"`
}

// SimConfig holds simulation defaults. Trials 0 means the model's own
// default (100000 for split sweeps, 100 for simple runs). Seed 0 draws from crypto/rand.
// Bankroll 0 leaves the payer unfunded and bets uncapped. MaxTrials caps a
// single run; MaxSweepTrials caps the trials of a whole sweep.
type SimConfig struct {
	Model          string  `mapstructure:"model"`
	Trials         int     `mapstructure:"trials"`
	HouseP         float64 `mapstructure:"house_p"`
	EdgeFrom       float64 `mapstructure:"edge_from"`
	EdgeTo         float64 `mapstructure:"edge_to"`
	EdgeStep       float64 `mapstructure:"edge_step"`
	SimpleEdge     float64 `mapstructure:"simple_edge"`
	Seed           uint64  `mapstructure:"seed"`
	Bankroll       float64 `mapstructure:"bankroll"`
	ReserveRatio   float64 `mapstructure:"reserve_ratio"`
	MaxTrials      int     `mapstructure:"max_trials"`
	MaxSweepTrials int     `mapstructure:"max_sweep_trials"`
}

// TrialsFor returns the configured trial count, or the model default.
func (c SimConfig) TrialsFor(kind string) int {
	if c.Trials > 0 {
		return c.Trials
	}
	if kind == "simple" {
		return 100
	}
	return 100_000
}

// Load reads EDGESIM_* environment variables, optionally a YAML file named
// by EDGESIM_CONFIG, and fills in defaults. PORT wins over EDGESIM_PORT.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EDGESIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8081)
	v.SetDefault("data_dir", "data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("sim.model", "split")
	v.SetDefault("sim.trials", 0)
	v.SetDefault("sim.house_p", 0.1)
	v.SetDefault("sim.edge_from", 0.1)
	v.SetDefault("sim.edge_to", 1.9)
	v.SetDefault("sim.edge_step", 0.1)
	v.SetDefault("sim.simple_edge", 0.01)
	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.bankroll", 0)
	v.SetDefault("sim.reserve_ratio", 1)
	v.SetDefault("sim.max_trials", 1_000_000)
	v.SetDefault("sim.max_sweep_trials", 2_000_000)

	if path := os.Getenv("EDGESIM_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// Prefer PORT (Render, Fly.io, Railway, etc.)
	if p := os.Getenv("PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	if cfg.Port <= 0 {
		cfg.Port = 8081
	}
	return &cfg, nil
}
