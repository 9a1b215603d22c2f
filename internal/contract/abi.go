package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ABIEntry is one ABI entry (function, event, constructor, fallback).
// Both the legacy constant/payable flags and stateMutability are kept so
// artifacts from old and new compilers round-trip unchanged.
type ABIEntry struct {
	Name            string     `json:"name,omitempty"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs,omitempty"`
	Constant        bool       `json:"constant,omitempty"`
	Payable         bool       `json:"payable,omitempty"`
	StateMutability string     `json:"stateMutability,omitempty"`
	Anonymous       bool       `json:"anonymous,omitempty"`
}

// ABIParam is a parameter in an ABI entry.
type ABIParam struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	InternalType string     `json:"internalType,omitempty"`
	Indexed      bool       `json:"indexed,omitempty"`
	Components   []ABIParam `json:"components,omitempty"`
}

// IsReadFunction returns true if the function is read-only (view/pure, or
// constant for pre-0.6 compilers).
func (e ABIEntry) IsReadFunction() bool {
	return e.Type == "function" &&
		(e.Constant || e.StateMutability == "view" || e.StateMutability == "pure")
}

// IsWriteFunction returns true if the function modifies state.
func (e ABIEntry) IsWriteFunction() bool {
	return e.Type == "function" && !e.IsReadFunction()
}

// Signature returns the canonical signature, e.g. "submitArticle(string,string,bool)".
func (e ABIEntry) Signature() string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = canonicalType(p)
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector.
func (e ABIEntry) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], keccak([]byte(e.Signature())))
	return sel
}

// Topic returns the event topic, the keccak hash of the signature.
func (e ABIEntry) Topic() common.Hash {
	return common.BytesToHash(keccak([]byte(e.Signature())))
}

// canonicalType expands tuples into their component list.
func canonicalType(p ABIParam) string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = canonicalType(c)
	}
	return "(" + strings.Join(parts, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}

func keccak(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func parseABI(data []byte) ([]ABIEntry, error) {
	var entries []ABIEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '{' {
			return nil, fmt.Errorf("ABI is a JSON object, not an array of entries")
		}
		return nil, fmt.Errorf("invalid ABI JSON: %w", err)
	}
	normalizeEntries(entries)
	return entries, nil
}

// compileABI converts entries into the go-ethereum ABI used for packing and
// unpacking.
func compileABI(entries []ABIEntry) (abi.ABI, error) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return abi.ABI{}, err
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parsing ABI: %w", err)
	}
	return parsed, nil
}

// compileEvent parses a single event descriptor. Events are parsed one at a
// time because artifact event indexes may hold two descriptors with the same
// name and different topics.
func compileEvent(e ABIEntry) (abi.Event, error) {
	if e.Type != "event" {
		return abi.Event{}, fmt.Errorf("entry %q is a %s, not an event", e.Name, e.Type)
	}
	parsed, err := compileABI([]ABIEntry{e})
	if err != nil {
		return abi.Event{}, err
	}
	for _, ev := range parsed.Events {
		return ev, nil
	}
	return abi.Event{}, fmt.Errorf("event %q not parsed", e.Name)
}

// validateABI checks that the ABI has at least one function, event or
// constructor.
func validateABI(entries []ABIEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("ABI is empty (no functions or events found)")
	}
	for _, e := range entries {
		if e.Type == "function" || e.Type == "event" || e.Type == "constructor" {
			return nil
		}
	}
	return fmt.Errorf("ABI has %d entries but none are functions or events", len(entries))
}
