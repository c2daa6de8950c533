package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where LoadConfig looks when no --config flag is given.
const DefaultPath = "~/.config/compiler-setup/config.yaml"

// Default returns the built-in configuration. These values reproduce the
// layout users already have on disk: ~/compiler_installation,
// ~/compiler_modulefiles and ~/.bashrc.
func Default() Config {
	return Config{
		Paths: Paths{
			InstallRoot:  "~/compiler_installation",
			ModuleRoot:   "~/compiler_modulefiles",
			ShellProfile: "~/.bashrc",
			StateFile:    "~/compiler_installation/state.json",
		},
		Toolchains: Toolchains{
			GCC: GCC{
				DefaultVersion: "14.2.0",
				URL:            "http://ftp.gnu.org/gnu/gcc/gcc-{version}/gcc-{version}.tar.gz",
				Packages:       []string{"build-essential", "libmpfr-dev", "libgmp3-dev", "libmpc-dev"},
			},
			LLVM: LLVM{
				DefaultVersion: "19.1.3",
				Source:         SourceGit,
				Repository:     "https://github.com/llvm/llvm-project.git",
				ReleaseRepo:    "llvm/llvm-project",
				APIBaseURL:     "https://api.github.com",
				Projects:       []string{"clang", "lld", "flang", "openmp", "clang-tools-extra"},
				Packages:       []string{"build-essential", "cmake", "git"},
			},
			AOCC: AOCC{
				Version: "5.0.0",
				URL:     "https://download.amd.com/developer/eula/aocc/aocc-5-0/aocc-compiler-{version}.tar",
			},
			Intel: Intel{
				Installers: []string{
					"https://registrationcenter-download.intel.com/akdlm/IRC_NAS/dfc4a434-838c-4450-a6fe-2fa903b75aa7/intel-oneapi-base-toolkit-2025.0.1.46_offline.sh",
					"https://registrationcenter-download.intel.com/akdlm/IRC_NAS/b7f71cf2-8157-4393-abae-8cea815509f7/intel-oneapi-hpc-toolkit-2025.0.1.47_offline.sh",
				},
				Packages: []string{"build-essential"},
			},
		},
	}
}

// LoadConfig reads the YAML file at path on top of Default. A missing file is
// not an error: the defaults are returned as-is. Every path in the result has
// "~" expanded.
func LoadConfig(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(ExpandPath(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
		// nothing to overlay
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		// yaml.v3 leaves fields absent from the document untouched, which is
		// what turns the defaults into an overlay.
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cfg.Paths.InstallRoot = ExpandPath(cfg.Paths.InstallRoot)
	cfg.Paths.ModuleRoot = ExpandPath(cfg.Paths.ModuleRoot)
	cfg.Paths.ShellProfile = ExpandPath(cfg.Paths.ShellProfile)
	cfg.Paths.WorkDir = ExpandPath(cfg.Paths.WorkDir)
	cfg.Paths.StateFile = ExpandPath(cfg.Paths.StateFile)
	return cfg, nil
}

// Validate rejects configurations the installers cannot act on.
func (c Config) Validate() error {
	if c.Paths.InstallRoot == "" || c.Paths.ModuleRoot == "" || c.Paths.ShellProfile == "" {
		return errors.New("config: paths.install_root, paths.module_root and paths.shell_profile are required")
	}
	switch c.Toolchains.LLVM.Source {
	case SourceGit, SourceTarball:
	default:
		return fmt.Errorf("config: toolchains.llvm.source must be %q or %q, got %q",
			SourceGit, SourceTarball, c.Toolchains.LLVM.Source)
	}
	if c.Toolchains.AOCC.Version == "" {
		return errors.New("config: toolchains.aocc.version is required")
	}
	if len(c.Toolchains.Intel.Installers) == 0 {
		return errors.New("config: toolchains.intel.installers must list at least one installer")
	}
	for _, u := range c.Toolchains.Intel.Installers {
		if strings.TrimSpace(u) == "" {
			return errors.New("config: toolchains.intel.installers contains an empty URL")
		}
	}
	return nil
}

// ExpandPath expands a leading "~" to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Expand substitutes the "{version}" placeholder in URL templates.
func Expand(template, version string) string {
	return strings.ReplaceAll(template, "{version}", version)
}
