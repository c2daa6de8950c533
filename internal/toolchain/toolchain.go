// Package toolchain models what is being installed and where it ends up on
// disk. Everything here is pure path arithmetic plus the installed-marker
// check the planner relies on.
package toolchain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"compiler-setup/internal/config"
)

// Family is one of the supported compiler suites.
type Family string

const (
	GCC   Family = "gcc"
	LLVM  Family = "llvm"
	AOCC  Family = "aocc"
	Intel Family = "intel"
)

// Families lists every supported family in display order.
var Families = []Family{GCC, LLVM, AOCC, Intel}

// ErrUsage marks errors caused by bad or missing user input.
var ErrUsage = errors.New("usage error")

// ParseFamily maps a user-supplied name to a Family.
func ParseFamily(name string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Families {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown toolchain family %q (want gcc, llvm, aocc or intel)", ErrUsage, name)
}

// Title is the human-readable product name used in messages and module help.
func (f Family) Title() string {
	switch f {
	case GCC:
		return "GCC"
	case LLVM:
		return "LLVM"
	case AOCC:
		return "AOCC"
	case Intel:
		return "Intel oneAPI Base and HPC Toolkits"
	default:
		return string(f)
	}
}

// Request identifies one provisioning run. Build it with NewRequest so the
// version is always resolved.
type Request struct {
	Family  Family
	Version string
}

// NewRequest resolves the version for family. An empty version falls back to
// the family default from cfg; Intel has no default, and AOCC only accepts its
// pinned version.
func NewRequest(family Family, version string, cfg config.Toolchains) (Request, error) {
	version = strings.TrimSpace(version)

	switch family {
	case GCC:
		if version == "" {
			version = cfg.GCC.DefaultVersion
		}
	case LLVM:
		if version == "" {
			version = cfg.LLVM.DefaultVersion
		}
	case AOCC:
		if version != "" && version != cfg.AOCC.Version {
			return Request{}, fmt.Errorf("%w: aocc is pinned to version %s", ErrUsage, cfg.AOCC.Version)
		}
		version = cfg.AOCC.Version
	case Intel:
		// no default
	default:
		return Request{}, fmt.Errorf("%w: unknown toolchain family %q", ErrUsage, family)
	}

	if version == "" {
		return Request{}, fmt.Errorf("%w: %s requires a version", ErrUsage, family)
	}
	if strings.ContainsAny(version, `/\ `) || version == "." || version == ".." {
		return Request{}, fmt.Errorf("%w: invalid version %q", ErrUsage, version)
	}
	return Request{Family: family, Version: version}, nil
}

// ID is the "<family>-<version>" name shared by the installation directory and
// the module file.
func (r Request) ID() string {
	return string(r.Family) + "-" + r.Version
}

// Layout holds the persisted-state locations for a run.
type Layout struct {
	InstallRoot  string
	ModuleRoot   string
	ShellProfile string
	WorkDir      string
	StateFile    string
}

// NewLayout builds a Layout from resolved config paths. workDir is used when
// the config does not name one.
func NewLayout(p config.Paths, workDir string) Layout {
	l := Layout{
		InstallRoot:  p.InstallRoot,
		ModuleRoot:   p.ModuleRoot,
		ShellProfile: p.ShellProfile,
		WorkDir:      p.WorkDir,
		StateFile:    p.StateFile,
	}
	if l.WorkDir == "" {
		l.WorkDir = workDir
	}
	return l
}

// InstallDir is the installation directory for r. The same request always
// maps to the same path.
func (l Layout) InstallDir(r Request) string {
	return filepath.Join(l.InstallRoot, r.ID())
}

// ModuleFile is the module descriptor path for r.
func (l Layout) ModuleFile(r Request) string {
	return filepath.Join(l.ModuleRoot, string(r.Family), r.ID())
}
