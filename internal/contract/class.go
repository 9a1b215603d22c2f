package contract

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Mohsinsiddi/journal/internal/chain"
	"github.com/Mohsinsiddi/journal/internal/providers"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTxTimeout is how long a write waits for its receipt.
	DefaultTxTimeout = 240 * time.Second
	// DefaultPollInterval is the delay between receipt polls.
	DefaultPollInterval = time.Second
)

// Backend is the node surface the bindings use. *chain.EVMClient satisfies it.
type Backend interface {
	NetworkID(ctx context.Context) (string, error)
	CallContract(ctx context.Context, msg chain.CallMsg) ([]byte, error)
	EstimateGas(ctx context.Context, msg chain.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, msg chain.CallMsg) (common.Hash, error)
	GetTransactionReceipt(ctx context.Context, hash common.Hash) (*chain.Receipt, error)
}

// Class is a contract factory bound to one artifact. It holds the active
// NetworkConfig, the link table, the transaction defaults and the transport.
// Reconfiguring a class (SetNetwork, Link, Defaults) affects every later
// invocation through it but is not transactional.
type Class struct {
	artifact *Artifact

	mu          sync.RWMutex
	backend     Backend
	config      *NetworkConfig
	resolved    bool
	links       map[string]string
	extraEvents map[common.Hash]abi.Event
	defaults    TxOpts
	timeout     time.Duration
	interval    time.Duration
	decodeLogs  bool
	logger      zerolog.Logger

	detect singleflight.Group
}

// Option configures a Class.
type Option func(*Class)

// WithProvider sets the transport used for every node request.
func WithProvider(p *providers.Provider) Option {
	return func(c *Class) { c.backend = chain.NewEVMClient(p) }
}

// WithBackend sets the node surface directly.
func WithBackend(b Backend) Option {
	return func(c *Class) { c.backend = b }
}

// WithDefaults sets the class transaction defaults.
func WithDefaults(o TxOpts) Option {
	return func(c *Class) { c.defaults = o }
}

// WithTimeout sets the confirmation timeout. 0 waits forever.
func WithTimeout(d time.Duration) Option {
	return func(c *Class) { c.timeout = d }
}

// WithPollInterval sets the delay between receipt polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Class) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogDecoding makes writes resolve with the receipt and decoded logs
// instead of only the transaction hash.
func WithLogDecoding(on bool) Option {
	return func(c *Class) { c.decodeLogs = on }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Class) { c.logger = l }
}

// NewClass creates a class for a. The default bundle (or the first bundle
// when there is none) is installed for inspection, but the network stays
// unresolved and is detected from the node on first use.
func NewClass(a *Artifact, opts ...Option) (*Class, error) {
	if a == nil || len(a.Networks) == 0 {
		return nil, fmt.Errorf("artifact has no networks")
	}
	id := DefaultNetwork
	if _, ok := a.Networks[id]; !ok {
		id = a.NetworkIDs()[0]
	}
	cfg, err := SelectNetwork(a, id)
	if err != nil {
		return nil, err
	}
	c := &Class{
		artifact:    a,
		config:      cfg,
		links:       make(map[string]string),
		extraEvents: make(map[common.Hash]abi.Event),
		timeout:     DefaultTxTimeout,
		interval:    DefaultPollInterval,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("contract", a.ContractName).Logger()
	return c, nil
}

// Name returns the contract name.
func (c *Class) Name() string { return c.artifact.ContractName }

// Artifact returns the artifact the class was built from.
func (c *Class) Artifact() *Artifact { return c.artifact }

// Networks returns the network ids the artifact has bundles for.
func (c *Class) Networks() []string { return c.artifact.NetworkIDs() }

// SetProvider replaces the transport.
func (c *Class) SetProvider(p *providers.Provider) {
	c.SetBackend(chain.NewEVMClient(p))
}

// SetBackend replaces the node surface.
func (c *Class) SetBackend(b Backend) {
	c.mu.Lock()
	c.backend = b
	c.mu.Unlock()
}

// Config returns the active network configuration.
func (c *Class) Config() *NetworkConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// Resolved reports whether a network has been selected explicitly or
// detected from the node.
func (c *Class) Resolved() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolved
}

// Address returns the deployed address of the active network, if any.
func (c *Class) Address() string { return c.Config().Address() }

// SetNetwork installs the bundle for id as the active configuration.
func (c *Class) SetNetwork(id string) error {
	cfg, err := SelectNetwork(c.artifact, id)
	if err != nil {
		return err
	}
	c.install(cfg)
	return nil
}

func (c *Class) install(cfg *NetworkConfig) {
	c.mu.Lock()
	c.config = cfg
	c.resolved = true
	c.mu.Unlock()
	c.logger.Debug().Str("network", cfg.NetworkID()).Str("address", cfg.Address()).Msg("network selected")
}

// CheckNetwork resolves the active network from the node the first time it
// is called. Later calls return immediately; concurrent first calls share a
// single net_version request.
func (c *Class) CheckNetwork(ctx context.Context) error {
	c.mu.RLock()
	resolved, backend := c.resolved, c.backend
	c.mu.RUnlock()
	if resolved {
		return nil
	}
	if backend == nil {
		return fmt.Errorf("%s: %w", c.Name(), ErrNoProvider)
	}

	// The shared query outlives any single caller's cancellation; each
	// caller stops waiting when its own context ends.
	query := context.WithoutCancel(ctx)
	ch := c.detect.DoChan("network", func() (interface{}, error) {
		if c.Resolved() {
			return nil, nil
		}
		id, err := backend.NetworkID(query)
		if err != nil {
			return nil, err
		}
		cfg, err := ResolveNetwork(c.artifact, id)
		if err != nil {
			return nil, err
		}
		c.install(cfg)
		return nil, nil
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ForNetwork returns a fresh class for the same artifact bound to network
// id. Settings are copied; links and merged events are not.
func (c *Class) ForNetwork(id string) (*Class, error) {
	c.mu.RLock()
	opts := []Option{
		WithBackend(c.backend),
		WithDefaults(c.defaults),
		WithTimeout(c.timeout),
		WithPollInterval(c.interval),
		WithLogDecoding(c.decodeLogs),
	}
	c.mu.RUnlock()

	clone, err := NewClass(c.artifact, opts...)
	if err != nil {
		return nil, err
	}
	clone.logger = c.logger
	if err := clone.SetNetwork(id); err != nil {
		return nil, err
	}
	return clone, nil
}

// Defaults merges o into the class defaults and returns the result.
func (c *Class) Defaults(o TxOpts) TxOpts {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults = c.defaults.Merge(o)
	return c.defaults
}

// Link registers address for library name.
func (c *Class) Link(name, address string) error {
	if !chain.IsHexAddress(address) {
		return &InvalidAddressError{Contract: name, Address: address}
	}
	c.mu.Lock()
	c.links[name] = address
	c.mu.Unlock()
	return nil
}

// LinkAll registers every name/address pair of links.
func (c *Class) LinkAll(links map[string]string) error {
	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.Link(name, links[name]); err != nil {
			return err
		}
	}
	return nil
}

// LinkInstance links a deployed library instance under its contract name
// and merges its events so logs it emits decode through this class.
func (c *Class) LinkInstance(inst *Instance) error {
	if inst == nil || inst.Address() == "" {
		return ErrUnlinkable
	}
	if err := c.Link(inst.ContractName(), inst.Address()); err != nil {
		return err
	}
	c.mu.Lock()
	for topic, ev := range inst.config.events {
		c.extraEvents[topic] = ev
	}
	c.mu.Unlock()
	return nil
}

// Links returns the effective link table: the bundle's links overlaid with
// the ones registered on the class.
func (c *Class) Links() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.config.Links()
	for k, v := range c.links {
		out[k] = v
	}
	return out
}

// Binary returns the deployable bytecode with every known library linked.
// It is recomputed on each call so links added later are honored.
func (c *Class) Binary() string {
	return linkBinary(c.Config().UnlinkedBinary(), c.Links())
}

// At attaches to a contract at address without contacting the node.
func (c *Class) At(address string) (*Instance, error) {
	if !chain.IsHexAddress(address) {
		return nil, &InvalidAddressError{Contract: c.Name(), Address: address}
	}
	return c.newInstance(c.Config(), address, ""), nil
}

// Deployed attaches to the address recorded for the active network.
func (c *Class) Deployed() (*Instance, error) {
	addr := c.Address()
	if addr == "" {
		return nil, fmt.Errorf("%w: %s not deployed or address not set", ErrNotDeployed, c.Name())
	}
	return c.At(addr)
}

// Connect detects the node's network and attaches to the address recorded
// for it.
func (c *Class) Connect(ctx context.Context) (*Instance, error) {
	if err := c.CheckNetwork(ctx); err != nil {
		return nil, err
	}
	return c.Deployed()
}

func (c *Class) newInstance(cfg *NetworkConfig, address, txHash string) *Instance {
	return &Instance{class: c, config: cfg, address: address, txHash: txHash}
}

// settings is a consistent snapshot of the class state an invocation needs.
type settings struct {
	backend    Backend
	defaults   TxOpts
	timeout    time.Duration
	interval   time.Duration
	decodeLogs bool
}

func (c *Class) snapshot() settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return settings{
		backend:    c.backend,
		defaults:   c.defaults,
		timeout:    c.timeout,
		interval:   c.interval,
		decodeLogs: c.decodeLogs,
	}
}

func (c *Class) extraEvent(topic common.Hash) (abi.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ev, ok := c.extraEvents[topic]
	return ev, ok
}
