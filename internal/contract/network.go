package contract

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// mainNetAliases are the bundle ids tried, in order, when the node reports
// the public main network.
var mainNetAliases = []string{"1", "live", DefaultNetwork}

// NetworkConfig is the immutable view of one network bundle: ABI, bytecode,
// address, links and event index all come from the same bundle.
type NetworkConfig struct {
	contractName   string
	networkID      string
	entries        []ABIEntry
	abi            abi.ABI
	methods        MethodTable
	unlinkedBinary string
	address        string
	links          map[string]string
	events         map[common.Hash]abi.Event
	updatedAt      int64
}

// SelectNetwork builds the configuration for network id of a.
func SelectNetwork(a *Artifact, id string) (*NetworkConfig, error) {
	b, ok := a.Networks[id]
	if !ok || b == nil {
		return nil, &NetworkMismatchError{Contract: a.ContractName, NetworkID: id}
	}
	return newNetworkConfig(a.ContractName, id, b)
}

// ResolveNetwork maps the id reported by a node to a bundle of a. The main
// network id "1" resolves to the first present of "1", "live" and "default".
func ResolveNetwork(a *Artifact, reported string) (*NetworkConfig, error) {
	id := reported
	if reported == "1" {
		for _, alias := range mainNetAliases {
			if _, ok := a.Networks[alias]; ok {
				id = alias
				break
			}
		}
	}
	return SelectNetwork(a, id)
}

func newNetworkConfig(name, id string, b *NetworkBundle) (*NetworkConfig, error) {
	parsed, err := compileABI(b.ABI)
	if err != nil {
		return nil, fmt.Errorf("%s network %q: %w", name, id, err)
	}
	events, err := buildEventIndex(b)
	if err != nil {
		return nil, fmt.Errorf("%s network %q: %w", name, id, err)
	}
	entries := make([]ABIEntry, len(b.ABI))
	copy(entries, b.ABI)
	return &NetworkConfig{
		contractName:   name,
		networkID:      id,
		entries:        entries,
		abi:            parsed,
		methods:        BuildMethodTable(parsed),
		unlinkedBinary: b.UnlinkedBinary,
		address:        b.Address,
		links:          copyLinks(b.Links),
		events:         events,
		updatedAt:      b.UpdatedAt,
	}, nil
}

// buildEventIndex uses the artifact's topic index when present and derives
// one from the ABI otherwise. Anonymous events have no topic and are skipped.
func buildEventIndex(b *NetworkBundle) (map[common.Hash]abi.Event, error) {
	index := make(map[common.Hash]abi.Event)
	if len(b.Events) > 0 {
		for topic, desc := range b.Events {
			ev, err := compileEvent(desc)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", topic, err)
			}
			index[common.HexToHash(topic)] = ev
		}
		return index, nil
	}
	for _, e := range b.ABI {
		if e.Type != "event" || e.Anonymous {
			continue
		}
		ev, err := compileEvent(e)
		if err != nil {
			return nil, err
		}
		index[e.Topic()] = ev
	}
	return index, nil
}

func (c *NetworkConfig) ContractName() string   { return c.contractName }
func (c *NetworkConfig) NetworkID() string      { return c.networkID }
func (c *NetworkConfig) ABI() abi.ABI           { return c.abi }
func (c *NetworkConfig) Methods() MethodTable   { return c.methods }
func (c *NetworkConfig) UnlinkedBinary() string { return c.unlinkedBinary }
func (c *NetworkConfig) Address() string        { return c.address }

// Entries returns a copy of the raw ABI entries.
func (c *NetworkConfig) Entries() []ABIEntry {
	out := make([]ABIEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Links returns a copy of the bundle's link table.
func (c *NetworkConfig) Links() map[string]string { return copyLinks(c.links) }

// Events returns a copy of the topic to event index.
func (c *NetworkConfig) Events() map[common.Hash]abi.Event {
	out := make(map[common.Hash]abi.Event, len(c.events))
	for k, v := range c.events {
		out[k] = v
	}
	return out
}

// Event returns the descriptor for topic.
func (c *NetworkConfig) Event(topic common.Hash) (abi.Event, bool) {
	ev, ok := c.events[topic]
	return ev, ok
}

// UpdatedAt returns when the bundle was last written, zero if unknown.
func (c *NetworkConfig) UpdatedAt() time.Time {
	if c.updatedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.updatedAt)
}
