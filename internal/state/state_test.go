package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadState_Missing(t *testing.T) {
	st, err := LoadState(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	assert.NotNil(t, st.Toolchains)
	assert.Empty(t, st.Toolchains)
}

func TestLoadState_NullMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"toolchains": null}`), 0o644))

	st, err := LoadState(path)
	require.NoError(t, err)
	assert.NotNil(t, st.Toolchains)
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := LoadState(path)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	installedAt := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	st := &State{Toolchains: map[string]ToolchainState{}}
	st.Record(ToolchainState{Family: "gcc", Version: "14.2.0", InstallDir: "/x/gcc-14.2.0", InstalledAt: installedAt})
	st.Record(ToolchainState{Family: "gcc", Version: "14.2.0", InstallDir: "/y/gcc-14.2.0", InstalledAt: installedAt})
	require.NoError(t, SaveState(path, st))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	require.Len(t, loaded.Toolchains, 1)
	assert.Equal(t, "/y/gcc-14.2.0", loaded.Toolchains["gcc-14.2.0"].InstallDir)
	assert.True(t, installedAt.Equal(loaded.Toolchains["gcc-14.2.0"].InstalledAt))
}

func TestSorted(t *testing.T) {
	st := &State{Toolchains: map[string]ToolchainState{}}
	for _, ts := range []ToolchainState{
		{Family: "llvm", Version: "19.1.3"},
		{Family: "gcc", Version: "14.2.0"},
		{Family: "gcc", Version: "9.5.0"},
		{Family: "gcc", Version: "13.3.0"},
		{Family: "intel", Version: "2025.0"},
	} {
		st.Record(ts)
	}

	var got []string
	for _, ts := range st.Sorted() {
		got = append(got, ts.Family+"-"+ts.Version)
	}
	assert.Equal(t, []string{"gcc-9.5.0", "gcc-13.3.0", "gcc-14.2.0", "intel-2025.0", "llvm-19.1.3"}, got)
}

func TestCompareVersions(t *testing.T) {
	assert.Negative(t, CompareVersions("9.5.0", "14.2.0"))
	assert.Positive(t, CompareVersions("2025.1", "2025.0"))
	assert.Zero(t, CompareVersions("14.2.0", "14.2.0"))
	assert.Negative(t, CompareVersions("14.2.0", "trunk"))
	assert.Negative(t, CompareVersions("nightly", "trunk"))
}
