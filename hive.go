// Package hive provides a high-level façade over the agent runtime:
// registry, communication bus, task decomposer and orchestrator wired
// together with shared configuration. Most applications interact with
// this package by:
//  1. Creating a Hive via New() (optionally overriding config, logger, store)
//  2. Registering one or more agents, which bootstrap-validates them and
//     attaches them to the communication bus
//  3. Submitting tasks and inspecting the returned outcomes
//
// All defaults are safe for local development and testing; embedding
// applications typically supply a durable run store and a structured
// logger.
package hive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/agenthive/hive/comm"
	"github.com/agenthive/hive/core"
	"github.com/agenthive/hive/decompose"
	"github.com/agenthive/hive/logging"
	"github.com/agenthive/hive/orchestrator"
	"github.com/agenthive/hive/registry"
	"github.com/agenthive/hive/store"
)

// Options configures the Hive instance.
type Options struct {
	// Config supplies the shared runtime thresholds.
	Config core.Config
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
	// Store receives one run record per submitted task. Nil disables run
	// recording.
	Store store.Store
	// Decomposer overrides the default decomposer with its built-in
	// composite operation templates.
	Decomposer *decompose.Decomposer
}

// Hive is the high-level façade aggregating the runtime components.
type Hive struct {
	opts         Options
	registry     *registry.Registry
	bus          *comm.Bus
	decomposer   *decompose.Decomposer
	orchestrator *orchestrator.Orchestrator

	initOnce sync.Once
	initOK   bool
}

// New creates a new Hive with optional overrides.
func New(optFns ...func(o *Options)) *Hive {
	opts := Options{
		Config: core.DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Decomposer == nil {
		opts.Decomposer = decompose.New()
	}

	reg := registry.New()
	bus := comm.NewBus(func(o *comm.Options) {
		o.Config = opts.Config
		o.Logger = opts.Logger
	})
	orch := orchestrator.New(reg, opts.Decomposer, func(o *orchestrator.Options) {
		o.Config = opts.Config
		o.Logger = opts.Logger
		o.Store = opts.Store
	})

	return &Hive{
		opts:         opts,
		registry:     reg,
		bus:          bus,
		decomposer:   opts.Decomposer,
		orchestrator: orch,
	}
}

// RegisterAgent initializes the agent through its bootstrap-validate
// sequence, adds it to the registry and attaches it to the communication
// bus. Agents whose validation fails are not registered and the error
// reports the failing agent id.
func (h *Hive) RegisterAgent(ctx context.Context, a core.Agent) error {
	if !a.Initialize(ctx) {
		return fmt.Errorf("agent %s: %w", a.ID(), core.ErrValidationFailed)
	}
	h.registry.Register(a)
	h.bus.Join(a)
	h.opts.Logger.Info("agent registered",
		"agent_id", a.ID(), "type", a.Type(), "capabilities", capabilityNames(a.Capabilities()))
	return nil
}

// Submit runs one task through the orchestrator, lazily initializing the
// orchestrator on first use.
func (h *Hive) Submit(ctx context.Context, task core.Task) (*orchestrator.Outcome, error) {
	h.initOnce.Do(func() {
		h.initOK = h.orchestrator.Initialize(ctx)
	})
	if !h.initOK {
		return nil, fmt.Errorf("orchestrator: %w", core.ErrValidationFailed)
	}
	return h.orchestrator.Submit(ctx, task), nil
}

// Registry exposes the agent registry.
func (h *Hive) Registry() *registry.Registry { return h.registry }

// Bus exposes the communication bus.
func (h *Hive) Bus() *comm.Bus { return h.bus }

// Decomposer exposes the task decomposer for template registration.
func (h *Hive) Decomposer() *decompose.Decomposer { return h.decomposer }

// Orchestrator exposes the orchestrator for metrics and history access.
func (h *Hive) Orchestrator() *orchestrator.Orchestrator { return h.orchestrator }

// Shutdown stops every registered agent, the orchestrator and the run
// store, collecting any errors. Agents already shut down are skipped.
func (h *Hive) Shutdown(ctx context.Context) error {
	var errs []error
	for _, a := range h.registry.All() {
		if err := a.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("agent %s: %w", a.ID(), err))
		}
		h.bus.Leave(a.ID())
	}
	if err := h.orchestrator.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("orchestrator: %w", err))
	}
	if h.opts.Store != nil {
		if err := h.opts.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func capabilityNames(capabilities []core.Capability) string {
	names := make([]string, len(capabilities))
	for i, c := range capabilities {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}
