// Package dapp holds the Journal dapp contracts: their embedded artifacts,
// a registry of builtins, and typed bindings over the generic contract layer.
package dapp

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/journal/internal/contract"
)

//go:embed artifacts/*.json
var artifactFS embed.FS

// Builtin describes a contract whose artifact ships inside the binary. New
// builtins register themselves via init() in their own file.
type Builtin struct {
	ID          string // machine key, e.g. "journal"
	Name        string // contract name, e.g. "Journal"
	Description string // one-line summary shown in `contract list`
	File        string // artifact file under artifacts/
}

var builtinRegistry = map[string]Builtin{}

// RegisterBuiltin adds a builtin to the registry.
func RegisterBuiltin(b Builtin) {
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a builtin by ID or contract name, case-insensitively.
func GetBuiltin(key string) (Builtin, bool) {
	key = strings.ToLower(key)
	if b, ok := builtinRegistry[key]; ok {
		return b, true
	}
	for _, b := range builtinRegistry {
		if strings.ToLower(b.Name) == key {
			return b, true
		}
	}
	return Builtin{}, false
}

// AllBuiltins returns all registered builtins sorted by ID.
func AllBuiltins() []Builtin {
	out := make([]Builtin, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Artifact parses a fresh copy of the embedded artifact, so callers may
// record deployments on it freely.
func (b Builtin) Artifact() (*contract.Artifact, error) {
	data, err := artifactFS.ReadFile("artifacts/" + b.File)
	if err != nil {
		return nil, fmt.Errorf("reading builtin %s: %w", b.ID, err)
	}
	a, err := contract.ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("parsing builtin %s: %w", b.ID, err)
	}
	if a.ContractName == "" {
		a.ContractName = b.Name
	}
	return a, nil
}

// ArtifactPath returns where the artifact for name lives in dir.
func ArtifactPath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// Load returns the artifact for key. A file <Name>.json in dir (typically
// written back by a deployment) takes precedence over the embedded copy. A
// key that is not a builtin is looked up in dir only.
func Load(key, dir string) (*contract.Artifact, error) {
	name := key
	b, builtin := GetBuiltin(key)
	if builtin {
		name = b.Name
	}
	if dir != "" {
		path := ArtifactPath(dir, name)
		if _, err := os.Stat(path); err == nil {
			return contract.LoadArtifact(path)
		}
	}
	if !builtin {
		return nil, fmt.Errorf("unknown contract %q, see `journal contract list`", key)
	}
	return b.Artifact()
}
