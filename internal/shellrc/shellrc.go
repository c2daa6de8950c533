// Package shellrc keeps the user's shell startup file exporting the module
// search path. The profile is shared by every installer run, so edits are
// append-only and happen at most once.
package shellrc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"compiler-setup/internal/logger"
)

// Profile is a handle on one shell startup file.
type Profile struct {
	Path string
	// Home is used to write the module root as $HOME/... when it lives under
	// the home directory, so the line survives a renamed home.
	Home string
}

// ExportLine returns the line that puts moduleRoot on MODULEPATH.
func (p Profile) ExportLine(moduleRoot string) string {
	return "export MODULEPATH=${MODULEPATH}:" + p.shellPath(moduleRoot)
}

func (p Profile) shellPath(dir string) string {
	if p.Home == "" {
		return dir
	}
	rel, err := filepath.Rel(p.Home, dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return dir
	}
	return "$HOME/" + filepath.ToSlash(rel)
}

// Exported reports whether the profile already exports moduleRoot on
// MODULEPATH. Any "export MODULEPATH" line mentioning the module root counts,
// whether or not it was written by us.
func (p Profile) Exported(moduleRoot string) (bool, error) {
	f, err := os.Open(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", p.Path, err)
	}
	defer f.Close()

	candidates := []string{moduleRoot, p.shellPath(moduleRoot)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") || !strings.Contains(line, "export MODULEPATH") {
			continue
		}
		for _, c := range candidates {
			if strings.Contains(line, c) {
				return true, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("failed to read %s: %w", p.Path, err)
	}
	return false, nil
}

// EnsureModulePath appends the MODULEPATH export unless it is already there.
// It returns true when the profile was changed. A missing profile is created.
func (p Profile) EnsureModulePath(moduleRoot string) (bool, error) {
	ok, err := p.Exported(moduleRoot)
	if err != nil {
		return false, err
	}
	if ok {
		logger.Info("[INFO] MODULEPATH already exported in %s\n", p.Path)
		return false, nil
	}

	existing, err := os.ReadFile(p.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to read %s: %w", p.Path, err)
	}

	var buf bytes.Buffer
	// keep the new line on its own even if the file lacks a trailing newline
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(p.ExportLine(moduleRoot))
	buf.WriteByte('\n')

	file, err := os.OpenFile(p.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("unable to open %s for appending: %w", p.Path, err)
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		file.Close()
		return false, fmt.Errorf("failed to append to %s: %w", p.Path, err)
	}
	if err := file.Close(); err != nil {
		return false, fmt.Errorf("failed to close %s: %w", p.Path, err)
	}

	logger.Info("[INFO] Added MODULEPATH to %s\n", p.Path)
	return true, nil
}
