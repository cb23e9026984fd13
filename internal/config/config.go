package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Engine holds the tuning knobs of the workflow engine. Values come from the
// environment, optionally layered over a YAML file.
type Engine struct {
	// ScriptPoolMinSize is the number of script VMs kept alive at all times.
	ScriptPoolMinSize int `yaml:"scriptPoolMinSize" json:"scriptPoolMinSize" env:"ENGINE_SCRIPT_POOL_MIN_SIZE" env-default:"1"`
	// ScriptPoolMaxSize caps the number of script VMs under load.
	ScriptPoolMaxSize int `yaml:"scriptPoolMaxSize" json:"scriptPoolMaxSize" env:"ENGINE_SCRIPT_POOL_MAX_SIZE" env-default:"8"`
	// ExpressionCacheSize is the LRU capacity for compiled flow conditions.
	ExpressionCacheSize int `yaml:"expressionCacheSize" json:"expressionCacheSize" env:"ENGINE_EXPRESSION_CACHE_SIZE" env-default:"256"`
	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `yaml:"logLevel" json:"logLevel" env:"ENGINE_LOG_LEVEL" env-default:"info"`
}

func (c Engine) Validate() error {
	if c.ScriptPoolMinSize < 0 || c.ScriptPoolMaxSize < 1 {
		return fmt.Errorf("invalid script pool sizes: min=%d max=%d", c.ScriptPoolMinSize, c.ScriptPoolMaxSize)
	}
	if c.ScriptPoolMaxSize < c.ScriptPoolMinSize {
		return fmt.Errorf("script pool max size %d is smaller than min size %d", c.ScriptPoolMaxSize, c.ScriptPoolMinSize)
	}
	if c.ExpressionCacheSize < 1 {
		return fmt.Errorf("expression cache size must be positive, got %d", c.ExpressionCacheSize)
	}
	return nil
}

// Load reads the engine configuration from the environment.
func Load() (Engine, error) {
	var c Engine
	if err := cleanenv.ReadEnv(&c); err != nil {
		return c, fmt.Errorf("failed to read engine config from environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// LoadFile reads the engine configuration from a YAML file, with environment
// variables taking precedence.
func LoadFile(path string) (Engine, error) {
	var c Engine
	if err := cleanenv.ReadConfig(path, &c); err != nil {
		return c, fmt.Errorf("failed to read engine config from %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Default returns the built-in defaults without consulting the environment.
func Default() Engine {
	return Engine{
		ScriptPoolMinSize:   1,
		ScriptPoolMaxSize:   8,
		ExpressionCacheSize: 256,
		LogLevel:            "info",
	}
}
