package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"rankcausal/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	LogLevel string `validate:"oneof=ERROR WARN INFO DEBUG TRACE"`
	Engine   EngineConfig
	Solver   SolverConfig
}

// EngineConfig holds the numeric caps and tolerances of the causal engines
type EngineConfig struct {
	MaxContexts   int     `validate:"gte=1"`
	CauseMargin   int     `validate:"gte=0"`
	Epsilon       float64 `validate:"gte=0"`
	KMax          int     `validate:"gte=0"`
	MaxRepairSize int     `validate:"gte=0"` // 0 means all candidates
	MaxWorlds     int     `validate:"gte=1"`
	PathLimit     int     `validate:"gte=1"`
}

// SolverConfig selects the search backend
type SolverConfig struct {
	Backend string        `validate:"required"`
	Timeout time.Duration `validate:"gt=0"`
}

// Defaults returns the configuration used when no variable is set
func Defaults() *Config {
	return &Config{
		LogLevel: "INFO",
		Engine: EngineConfig{
			MaxContexts: 512,
			CauseMargin: 1,
			KMax:        2,
			MaxWorlds:   512,
			PathLimit:   1000,
		},
		Solver: SolverConfig{
			Backend: "enumeration",
			Timeout: 5 * time.Second,
		},
	}
}

// Load reads .env files (missing ones are skipped, ".env" when none are
// given), then environment variables over the defaults, and validates the
// result. Process environment wins over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read %s", f)
		}
	}

	config := Defaults()
	var p parser
	config.LogLevel = strings.ToUpper(p.strVar("LOG_LEVEL", config.LogLevel))
	config.Engine.MaxContexts = p.intVar("RC_MAX_CONTEXTS", config.Engine.MaxContexts)
	config.Engine.CauseMargin = p.intVar("RC_CAUSE_MARGIN", config.Engine.CauseMargin)
	config.Engine.Epsilon = p.floatVar("RC_EPSILON", config.Engine.Epsilon)
	config.Engine.KMax = p.intVar("RC_K_MAX", config.Engine.KMax)
	config.Engine.MaxRepairSize = p.intVar("RC_MAX_REPAIR_SIZE", config.Engine.MaxRepairSize)
	config.Engine.MaxWorlds = p.intVar("RC_MAX_WORLDS", config.Engine.MaxWorlds)
	config.Engine.PathLimit = p.intVar("RC_PATH_LIMIT", config.Engine.PathLimit)
	config.Solver.Backend = strings.ToLower(p.strVar("RC_SOLVER_BACKEND", config.Solver.Backend))
	config.Solver.Timeout = p.durationVar("RC_SOLVER_TIMEOUT", config.Solver.Timeout)
	if len(p.errs) > 0 {
		return nil, errors.ConfigInvalid(strings.Join(p.errs, "; "))
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

var validate = validator.New()

// Validate checks the struct tags of c
func Validate(c *Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.ConfigInvalid(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return errors.ConfigInvalid(strings.Join(msgs, "; "))
}

// parser reads environment variables and collects malformed values.
type parser struct {
	errs []string
}

func (p *parser) strVar(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}

func (p *parser) intVar(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s=%q is not an integer", key, value))
		return def
	}
	return n
}

func (p *parser) floatVar(key string, def float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s=%q is not a number", key, value))
		return def
	}
	return f
}

func (p *parser) durationVar(key string, def time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s=%q is not a duration", key, value))
		return def
	}
	return d
}
