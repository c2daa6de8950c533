package state

import (
	"encoding/json" // For JSON encoding and decoding of the state file
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"compiler-setup/internal/logger"
)

// ToolchainState records one completed installation.
type ToolchainState struct {
	Family      string    `json:"family"`
	Version     string    `json:"version"`
	InstallDir  string    `json:"install_dir"`
	ModuleFile  string    `json:"module_file"`
	InstalledAt time.Time `json:"installed_at"`
}

// State is the ledger of installations made by this tool, keyed by
// "<family>-<version>". It is informational: whether a toolchain is installed
// is always decided from the filesystem, never from this file.
type State struct {
	Toolchains map[string]ToolchainState `json:"toolchains"`
}

// LoadState loads the ledger at path. A missing file yields an empty State;
// a corrupt one is an error so it is not silently overwritten.
func LoadState(path string) (*State, error) {
	st := &State{Toolchains: make(map[string]ToolchainState)}

	file, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	if err := json.Unmarshal(file, st); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	// the file may contain "toolchains": null
	if st.Toolchains == nil {
		st.Toolchains = make(map[string]ToolchainState)
	}
	return st, nil
}

// SaveState writes the ledger as indented JSON, creating the parent directory.
func SaveState(path string, st *State) error {
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, append(file, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}

// Record stores ts, replacing an earlier record of the same toolchain.
func (s *State) Record(ts ToolchainState) {
	s.Toolchains[ts.Family+"-"+ts.Version] = ts
}

// Sorted returns the records ordered by family, then by version with
// semantic-version ordering where the versions allow it.
func (s *State) Sorted() []ToolchainState {
	out := make([]ToolchainState, 0, len(s.Toolchains))
	for _, ts := range s.Toolchains {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		return CompareVersions(out[i].Version, out[j].Version) < 0
	})
	return out
}

// CompareVersions orders toolchain versions such as "14.2.0" or "2025.0".
// Versions that are not valid semantic versions sort after valid ones and
// fall back to string order among themselves.
func CompareVersions(a, b string) int {
	va, vb := canonical(a), canonical(b)
	switch {
	case va != "" && vb != "":
		if c := semver.Compare(va, vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case va != "":
		return -1
	case vb != "":
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
