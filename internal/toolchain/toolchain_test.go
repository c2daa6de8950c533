package toolchain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compiler-setup/internal/config"
)

func testLayout(t *testing.T) Layout {
	t.Helper()
	root := t.TempDir()
	return Layout{
		InstallRoot:  filepath.Join(root, "compiler_installation"),
		ModuleRoot:   filepath.Join(root, "compiler_modulefiles"),
		ShellProfile: filepath.Join(root, ".bashrc"),
		WorkDir:      root,
	}
}

func TestParseFamily(t *testing.T) {
	for _, name := range []string{"gcc", "LLVM", " aocc ", "Intel"} {
		f, err := ParseFamily(name)
		require.NoError(t, err, name)
		assert.Contains(t, Families, f)
	}

	_, err := ParseFamily("msvc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestNewRequest(t *testing.T) {
	defaults := config.Default().Toolchains

	tests := []struct {
		name    string
		family  Family
		version string
		want    string
		wantErr bool
	}{
		{"gcc explicit", GCC, "13.3.0", "13.3.0", false},
		{"gcc default", GCC, "", "14.2.0", false},
		{"llvm default", LLVM, "  ", "19.1.3", false},
		{"aocc pinned", AOCC, "", "5.0.0", false},
		{"aocc same version", AOCC, "5.0.0", "5.0.0", false},
		{"aocc other version", AOCC, "4.2.0", "", true},
		{"intel explicit", Intel, "2025.0", "2025.0", false},
		{"intel missing", Intel, "", "", true},
		{"path separator", GCC, "../14", "", true},
		{"unknown family", Family("msvc"), "1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.family, tt.version, defaults)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUsage))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Version)
			assert.Equal(t, tt.family, req.Family)
		})
	}
}

func TestLayout_InstallDirIsDeterministic(t *testing.T) {
	l := testLayout(t)
	for _, f := range Families {
		req := Request{Family: f, Version: "1.2.3"}
		first := l.InstallDir(req)
		assert.Equal(t, first, l.InstallDir(req))
		assert.Equal(t, filepath.Join(l.InstallRoot, string(f)+"-1.2.3"), first)
	}
}

func TestLayout_ModuleFile(t *testing.T) {
	l := testLayout(t)
	req := Request{Family: GCC, Version: "14.2.0"}
	assert.Equal(t, filepath.Join(l.ModuleRoot, "gcc", "gcc-14.2.0"), l.ModuleFile(req))
}

func TestNewLayout_WorkDirFallback(t *testing.T) {
	l := NewLayout(config.Paths{InstallRoot: "/i", ModuleRoot: "/m", ShellProfile: "/p"}, "/cwd")
	assert.Equal(t, "/cwd", l.WorkDir)

	l = NewLayout(config.Paths{WorkDir: "/work"}, "/cwd")
	assert.Equal(t, "/work", l.WorkDir)
}

func TestNewPlan_FreshInstall(t *testing.T) {
	l := testLayout(t)
	req := Request{Family: GCC, Version: "14.2.0"}

	plan := NewPlan(req, l)
	assert.False(t, plan.Skip)
	assert.Equal(t, filepath.Join(l.InstallRoot, "gcc-14.2.0"), plan.InstallDir)
}

func TestNewPlan_BinaryMarker(t *testing.T) {
	tests := []struct {
		family Family
		binary string
	}{
		{GCC, "gcc"},
		{LLVM, "clang"},
	}

	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			l := testLayout(t)
			req := Request{Family: tt.family, Version: "1.0.0"}
			dir := l.InstallDir(req)

			// the directory alone is not enough for source builds
			require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
			assert.False(t, NewPlan(req, l).Skip)

			require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", tt.binary), []byte{}, 0o755))
			assert.True(t, NewPlan(req, l).Skip)
		})
	}
}

func TestNewPlan_DirectoryMarker(t *testing.T) {
	for _, f := range []Family{AOCC, Intel} {
		t.Run(string(f), func(t *testing.T) {
			l := testLayout(t)
			req := Request{Family: f, Version: "2025.0"}

			assert.False(t, NewPlan(req, l).Skip)
			require.NoError(t, os.MkdirAll(l.InstallDir(req), 0o755))
			assert.True(t, NewPlan(req, l).Skip)
		})
	}
}

func TestFamily_Title(t *testing.T) {
	assert.Equal(t, "GCC", GCC.Title())
	assert.Equal(t, "Intel oneAPI Base and HPC Toolkits", Intel.Title())
}
