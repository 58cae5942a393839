package container

import (
	"fmt"

	"rankcausal/adapters/solver"
	"rankcausal/app"
	"rankcausal/internal"
	"rankcausal/internal/causation"
	"rankcausal/internal/config"
	"rankcausal/internal/discovery"
	"rankcausal/internal/errors"
	"rankcausal/internal/identification"
	"rankcausal/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Solver backend selected by RC_SOLVER_BACKEND
	Backend ports.SolverBackend

	// Engines
	Tester     *causation.Tester
	Discovery  *discovery.PC
	Identifier *identification.Identifier

	// Services
	Analysis *app.AnalysisService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
	}

	if err := c.initLogger(); err != nil {
		return nil, err
	}
	if err := c.initBackend(); err != nil {
		return nil, err
	}
	c.initEngines()

	c.Analysis = app.NewAnalysisService(c.Tester, c.Discovery, c.Backend, cfg.Engine.MaxWorlds, c.Logger)

	c.Logger.Debug("container initialized with backend %s", c.Backend.Name)
	return c, nil
}

// initLogger builds the logger from the configured level
func (c *Container) initLogger() error {
	level, ok := internal.ParseLogLevel(c.Config.LogLevel)
	if !ok {
		return errors.ConfigInvalid(fmt.Sprintf("unknown log level %q", c.Config.LogLevel))
	}
	c.Logger = internal.NewLogger(level)
	return nil
}

// initBackend resolves the solver backend; an unknown name is fatal
func (c *Container) initBackend() error {
	backend, err := solver.GetBackend(c.Config.Solver.Backend, solver.Options{
		Timeout: c.Config.Solver.Timeout,
		Logger:  c.Logger,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize solver backend")
	}
	c.Backend = backend
	return nil
}

// initEngines configures the causal engines from the engine settings
func (c *Container) initEngines() {
	eng := c.Config.Engine
	c.Tester = causation.NewTester(eng.CauseMargin, eng.MaxContexts)
	c.Discovery = discovery.NewPC(discovery.Options{
		KMax:        eng.KMax,
		Epsilon:     eng.Epsilon,
		MaxContexts: eng.MaxContexts,
		Logger:      c.Logger,
	})
	c.Identifier = &identification.Identifier{
		PathLimit:   eng.PathLimit,
		MaxContexts: eng.MaxContexts,
	}
}
