package shellrc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfile(t *testing.T, content *string) (Profile, string) {
	t.Helper()
	home := t.TempDir()
	path := filepath.Join(home, ".bashrc")
	if content != nil {
		require.NoError(t, os.WriteFile(path, []byte(*content), 0o644))
	}
	return Profile{Path: path, Home: home}, filepath.Join(home, "compiler_modulefiles")
}

func TestExportLine(t *testing.T) {
	p := Profile{Path: "/home/u/.bashrc", Home: "/home/u"}
	assert.Equal(t, "export MODULEPATH=${MODULEPATH}:$HOME/compiler_modulefiles", p.ExportLine("/home/u/compiler_modulefiles"))
	assert.Equal(t, "export MODULEPATH=${MODULEPATH}:/opt/modulefiles", p.ExportLine("/opt/modulefiles"))
}

func TestEnsureModulePath_AppendsOnce(t *testing.T) {
	content := "alias ll='ls -al'\n"
	p, moduleRoot := newProfile(t, &content)

	changed, err := p.EnsureModulePath(moduleRoot)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.EnsureModulePath(moduleRoot)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(got), "export MODULEPATH"))
	assert.True(t, strings.HasPrefix(string(got), content), "existing content must be preserved")
	assert.True(t, strings.HasSuffix(string(got), "export MODULEPATH=${MODULEPATH}:$HOME/compiler_modulefiles\n"))
}

func TestEnsureModulePath_CreatesMissingProfile(t *testing.T) {
	p, moduleRoot := newProfile(t, nil)

	changed, err := p.EnsureModulePath(moduleRoot)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, "export MODULEPATH=${MODULEPATH}:$HOME/compiler_modulefiles\n", string(got))
}

func TestEnsureModulePath_NoTrailingNewline(t *testing.T) {
	content := "export EDITOR=vim"
	p, moduleRoot := newProfile(t, &content)

	_, err := p.EnsureModulePath(moduleRoot)
	require.NoError(t, err)

	got, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vim\nexport MODULEPATH=${MODULEPATH}:$HOME/compiler_modulefiles\n", string(got))
}

func TestExported(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"empty", "", false},
		{"ours", "export MODULEPATH=${MODULEPATH}:$HOME/compiler_modulefiles\n", true},
		{"absolute path", "export MODULEPATH=$MODULEPATH:HOMEDIR/compiler_modulefiles\n", true},
		{"other modulepath", "export MODULEPATH=/usr/share/modules\n", false},
		{"commented out", "# export MODULEPATH=${MODULEPATH}:$HOME/compiler_modulefiles\n", false},
		{"indented", "  export MODULEPATH=${MODULEPATH}:$HOME/compiler_modulefiles\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			content := strings.ReplaceAll(tt.content, "HOMEDIR", home)
			path := filepath.Join(home, ".bashrc")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			p := Profile{Path: path, Home: home}
			got, err := p.Exported(filepath.Join(home, "compiler_modulefiles"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureModulePath_UnreadableProfile(t *testing.T) {
	dir := t.TempDir()
	// a directory where the profile should be cannot be read as a file
	p := Profile{Path: dir, Home: dir}

	_, err := p.EnsureModulePath(filepath.Join(dir, "compiler_modulefiles"))
	assert.Error(t, err)
}
