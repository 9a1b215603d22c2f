package contract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultNetwork is the bundle installed when no network has been detected.
const DefaultNetwork = "default"

// Artifact is a compiled contract with its per-network deployments.
type Artifact struct {
	ContractName string                    `json:"contract_name"`
	Networks     map[string]*NetworkBundle `json:"networks"`
}

// NetworkBundle is the deployment metadata of one network id.
type NetworkBundle struct {
	ABI            []ABIEntry          `json:"abi"`
	UnlinkedBinary string              `json:"unlinked_binary"`
	Address        string              `json:"address,omitempty"`
	Events         map[string]ABIEntry `json:"events,omitempty"` // keyed by topic hex
	Links          map[string]string   `json:"links,omitempty"`
	UpdatedAt      int64               `json:"updated_at,omitempty"` // epoch millis
}

// NetworkIDs returns the network ids of the artifact sorted alphabetically.
func (a *Artifact) NetworkIDs() []string {
	ids := make([]string, 0, len(a.Networks))
	for id := range a.Networks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RecordDeployment stores address as the deployment of networkID. A bundle
// for an unknown id is cloned from the default bundle.
func (a *Artifact) RecordDeployment(networkID, address string, at time.Time) error {
	b, ok := a.Networks[networkID]
	if !ok {
		base, ok := a.Networks[DefaultNetwork]
		if !ok {
			return fmt.Errorf("%s has no bundle for network %q and no default bundle", a.ContractName, networkID)
		}
		clone := *base
		clone.Links = copyLinks(base.Links)
		b = &clone
		a.Networks[networkID] = b
	}
	b.Address = address
	b.UpdatedAt = at.UnixMilli()
	return nil
}

// Save writes the artifact as indented JSON.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadArtifact reads an artifact file. When the file does not name its
// contract, the file name without extension is used.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("artifact file is empty: %s", path)
	}
	a, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if a.ContractName == "" {
		a.ContractName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return a, nil
}

// ParseArtifact accepts three formats:
//   - truffle: {"contract_name": ..., "networks": {"<id>": {abi, unlinked_binary, ...}}}
//   - Hardhat/Foundry: {"contractName": ..., "abi": [...], "bytecode": "0x..." | {"object": "0x..."}}
//   - a raw ABI array
//
// The last two become a single default bundle.
func ParseArtifact(data []byte) (*Artifact, error) {
	var raw struct {
		ContractName string                    `json:"contract_name"`
		HardhatName  string                    `json:"contractName"`
		Networks     map[string]*NetworkBundle `json:"networks"`
		ABI          json.RawMessage           `json:"abi"`
		Bytecode     json.RawMessage           `json:"bytecode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an object; try a raw ABI array.
		entries, abiErr := parseABI(data)
		if abiErr != nil {
			return nil, abiErr
		}
		if err := validateABI(entries); err != nil {
			return nil, err
		}
		return &Artifact{Networks: map[string]*NetworkBundle{
			DefaultNetwork: {ABI: entries},
		}}, nil
	}

	name := raw.ContractName
	if name == "" {
		name = raw.HardhatName
	}

	if len(raw.Networks) > 0 && len(raw.ABI) == 0 {
		for id, b := range raw.Networks {
			if b == nil {
				return nil, fmt.Errorf("network %q has an empty bundle", id)
			}
			normalizeEntries(b.ABI)
			if err := validateABI(b.ABI); err != nil {
				return nil, fmt.Errorf("network %q: %w", id, err)
			}
		}
		return &Artifact{ContractName: name, Networks: raw.Networks}, nil
	}

	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, fmt.Errorf("artifact has neither \"networks\" nor an \"abi\" array")
	}
	entries, err := parseABI(raw.ABI)
	if err != nil {
		return nil, fmt.Errorf("parsing artifact ABI: %w", err)
	}
	if err := validateABI(entries); err != nil {
		return nil, err
	}
	bundle := &NetworkBundle{ABI: entries}
	if len(raw.Bytecode) > 0 {
		bc, err := extractBytecodeHex(raw.Bytecode)
		if err != nil {
			return nil, fmt.Errorf("extracting bytecode from artifact: %w", err)
		}
		bundle.UnlinkedBinary = bc
	}
	return &Artifact{ContractName: name, Networks: map[string]*NetworkBundle{DefaultNetwork: bundle}}, nil
}

// extractBytecodeHex handles the two common artifact formats:
//   - Hardhat:  "bytecode": "0x608060..."          (JSON string)
//   - Foundry:  "bytecode": {"object": "0x608060..."} (JSON object)
func extractBytecodeHex(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str), nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Object != "" {
		obj.Object = strings.TrimSpace(obj.Object)
		if !strings.HasPrefix(obj.Object, "0x") {
			obj.Object = "0x" + obj.Object
		}
		return obj.Object, nil
	}

	return "", fmt.Errorf("bytecode field is neither a hex string nor a {\"object\":\"0x...\"} object")
}

// normalizeEntries fills in the type early compilers omit on plain functions.
func normalizeEntries(entries []ABIEntry) {
	for i := range entries {
		if entries[i].Type == "" {
			entries[i].Type = "function"
		}
	}
}

func copyLinks(links map[string]string) map[string]string {
	out := make(map[string]string, len(links))
	for k, v := range links {
		out[k] = v
	}
	return out
}
