package comm

import (
	"context"
	"sync"
	"time"

	"github.com/agenthive/hive/core"
	"github.com/agenthive/hive/logging"
)

// TaskType names a negotiable delegation task.
type TaskType string

const (
	// TaskTypePing is a liveness check echoing capabilities and status.
	TaskTypePing TaskType = "ping"
	// TaskTypeCollaborate executes a shared task spec on the receiver.
	TaskTypeCollaborate TaskType = "collaborate"
	// TaskTypeOptimizeParameters grid-searches a supplied parameter space.
	TaskTypeOptimizeParameters TaskType = "optimize_parameters"
	// TaskTypeShareKnowledge stores shared knowledge and acknowledges it.
	TaskTypeShareKnowledge TaskType = "share_knowledge"
)

// Priority orders competing delegations. Currently advisory; it travels
// with the request so handlers can inspect it.
type Priority int

const (
	// PriorityLow marks background work.
	PriorityLow Priority = iota
	// PriorityNormal is the default.
	PriorityNormal
	// PriorityHigh marks latency-sensitive work.
	PriorityHigh
)

// Request is one delegation handed to a target's handler.
type Request struct {
	From       string
	To         string
	Type       TaskType
	Priority   Priority
	Parameters map[string]any
}

// Response is the terminal outcome of one delegation round trip. Failures
// are values, not errors: Success is false and Error carries the message.
type Response struct {
	From    string
	Success bool
	Result  map[string]any
	Error   string
	Elapsed time.Duration
}

// Handler processes one delegated request on the receiving peer.
type Handler func(ctx context.Context, req Request) (map[string]any, error)

// Options configures a Bus.
type Options struct {
	// Config supplies the default delegation timeout.
	Config core.Config
	// Logger receives delegation events. Defaults to NoOp.
	Logger logging.Logger
}

// Bus connects peers inside one process. Construct via NewBus at startup
// and tear down at shutdown; there is no package-level instance.
type Bus struct {
	cfg    core.Config
	logger logging.Logger

	mu    sync.RWMutex
	peers map[string]*Peer
}

// NewBus creates an empty bus.
func NewBus(optFns ...func(o *Options)) *Bus {
	opts := Options{
		Config: core.DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Bus{
		cfg:    opts.Config,
		logger: opts.Logger,
		peers:  make(map[string]*Peer),
	}
}

// Join attaches an agent to the bus and returns its peer, with the
// built-in handlers already registered. Joining the same agent id again
// returns the existing peer.
func (b *Bus) Join(a core.Agent) *Peer {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.peers[a.ID()]; ok {
		return p
	}

	p := newPeer(b, a)
	b.peers[a.ID()] = p
	return p
}

// Peer returns the peer joined under id.
func (b *Bus) Peer(id string) (*Peer, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.peers[id]
	return p, ok
}

// Leave detaches an agent from the bus. Relationships recorded about the
// departed agent remain on the peers that hold them.
func (b *Bus) Leave(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.peers, id)
}
