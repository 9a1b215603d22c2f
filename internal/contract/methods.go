package contract

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// MethodKind tags a contract function as a read (eth_call) or a write
// (transaction tracked to confirmation).
type MethodKind int

const (
	Read MethodKind = iota
	Write
)

func (k MethodKind) String() string {
	if k == Read {
		return "read"
	}
	return "write"
}

// Method is one entry of a MethodTable.
type Method struct {
	Name string
	Kind MethodKind
	ABI  abi.Method
}

// Signature returns the canonical signature of the method.
func (m Method) Signature() string { return m.ABI.Sig }

// Selector returns the 4-byte selector of the method.
func (m Method) Selector() []byte { return m.ABI.ID }

// MethodTable maps function names to their typed schema. Overloaded
// functions are keyed by the names go-ethereum assigns (foo, foo0, ...).
type MethodTable map[string]Method

// BuildMethodTable builds the table for every function of parsed.
func BuildMethodTable(parsed abi.ABI) MethodTable {
	table := make(MethodTable, len(parsed.Methods))
	for name, m := range parsed.Methods {
		kind := Write
		if m.IsConstant() {
			kind = Read
		}
		table[name] = Method{Name: name, Kind: kind, ABI: m}
	}
	return table
}

// Lookup returns the method called name.
func (t MethodTable) Lookup(name string) (Method, error) {
	m, ok := t[name]
	if !ok {
		return Method{}, fmt.Errorf("%w: %q", ErrMethodNotFound, name)
	}
	return m, nil
}

// Names returns the method names sorted alphabetically.
func (t MethodTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter returns the methods of the given kind sorted by name.
func (t MethodTable) Filter(kind MethodKind) []Method {
	var out []Method
	for _, name := range t.Names() {
		if t[name].Kind == kind {
			out = append(out, t[name])
		}
	}
	return out
}
