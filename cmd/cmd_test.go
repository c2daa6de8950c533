package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compiler-setup/internal/config"
	"compiler-setup/internal/state"
)

// writeConfig points every path at a temp directory and returns the config
// file and the directory.
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	doc := fmt.Sprintf(`paths:
  install_root: %[1]s/compilers
  module_root: %[1]s/modules
  shell_profile: %[1]s/.bashrc
  work_dir: %[1]s/work
  state_file: %[1]s/state.json
`, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path, dir
}

// run executes the CLI and returns its exit status and command output.
func run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	t.Cleanup(func() {
		dryRun = false
		debug = false
		configPath = config.DefaultPath
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	code := execute(context.Background(), args)
	return code, out.String()
}

func TestInstall_DryRunPrintsPlan(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	code, out := run(t, "--config", cfgPath, "install", "gcc", "--dry-run")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, filepath.Join(dir, "compilers", "gcc-14.2.0"))
	assert.Contains(t, out, "steps: ")
	assert.Contains(t, out, "configure, build, install, register-module, update-shell-profile")

	assert.NoDirExists(t, filepath.Join(dir, "compilers"))
	assert.NoDirExists(t, filepath.Join(dir, "modules"))
	assert.NoFileExists(t, filepath.Join(dir, ".bashrc"))
}

func TestInstall_DryRunInstalledToolchain(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	gcc := filepath.Join(dir, "compilers", "gcc-13.3.0", "bin", "gcc")
	require.NoError(t, os.MkdirAll(filepath.Dir(gcc), 0o755))
	require.NoError(t, os.WriteFile(gcc, []byte("#!/bin/sh\n"), 0o755))

	code, out := run(t, "--config", cfgPath, "install", "gcc", "13.3.0", "--dry-run")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "already installed")
	assert.Contains(t, out, "steps: register-module, update-shell-profile")
}

func TestInstall_UsageErrors(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"extra argument", []string{"install", "gcc", "14.2.0", "extra"}},
		{"missing intel version", []string{"install", "intel"}},
		{"aocc takes no version", []string{"install", "aocc", "4.2.0"}},
		{"invalid version", []string{"install", "llvm", "../19"}},
		{"unknown family", []string{"install", "fortran"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := run(t, append([]string{"--config", cfgPath}, append(tt.args, "--dry-run")...)...)
			assert.Equal(t, 1, code)
		})
	}
}

func TestInstall_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("toolchains:\n  intel:\n    installers: []\n"), 0o644))

	code, _ := run(t, "--config", path, "install", "gcc", "--dry-run")
	assert.Equal(t, 1, code)
}

func TestList(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	st := &state.State{Toolchains: map[string]state.ToolchainState{}}
	st.Record(state.ToolchainState{Family: "gcc", Version: "14.2.0", InstallDir: filepath.Join(dir, "compilers", "gcc-14.2.0"), InstalledAt: time.Now()})
	st.Record(state.ToolchainState{Family: "aocc", Version: "5.0.0", InstallDir: filepath.Join(dir, "compilers", "aocc-5.0.0"), InstalledAt: time.Now()})
	require.NoError(t, state.SaveState(filepath.Join(dir, "state.json"), st))

	code, out := run(t, "--config", cfgPath, "list")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "FAMILY")
	assert.Contains(t, out, "gcc-14.2.0")
	assert.Contains(t, out, "aocc-5.0.0")
	assert.Less(t, strings.Index(out, "aocc"), strings.Index(out, "gcc-14.2.0"))

	code, out = run(t, "--config", cfgPath, "list", "GCC")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "gcc-14.2.0")
	assert.NotContains(t, out, "aocc-5.0.0")

	code, out = run(t, "--config", cfgPath, "list", "llvm")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "No toolchains installed yet.")
}

func TestList_UnknownFamily(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	code, _ := run(t, "--config", cfgPath, "list", "fortran")
	assert.Equal(t, 1, code)
}
