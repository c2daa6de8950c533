package config

// Config is the fully resolved configuration: built-in defaults overlaid by
// whatever the optional YAML file sets.
type Config struct {
	Paths      Paths      `yaml:"paths"`
	Build      Build      `yaml:"build"`
	Toolchains Toolchains `yaml:"toolchains"`
}

// Paths holds the persisted-state locations.
// - InstallRoot: parent of every <family>-<version> installation directory.
// - ModuleRoot: parent of the per-family module file directories.
// - ShellProfile: startup file that receives the MODULEPATH export.
// - WorkDir: where payloads are downloaded and sources unpacked; empty means the current directory.
// - StateFile: JSON ledger of completed installations.
type Paths struct {
	InstallRoot  string `yaml:"install_root"`
	ModuleRoot   string `yaml:"module_root"`
	ShellProfile string `yaml:"shell_profile"`
	WorkDir      string `yaml:"work_dir"`
	StateFile    string `yaml:"state_file"`
}

// Build tunes the compile steps. Jobs <= 0 means one job per host CPU.
type Build struct {
	Jobs int `yaml:"jobs"`
}

// Toolchains groups the per-family settings.
type Toolchains struct {
	GCC   GCC   `yaml:"gcc"`
	LLVM  LLVM  `yaml:"llvm"`
	AOCC  AOCC  `yaml:"aocc"`
	Intel Intel `yaml:"intel"`
}

// GCC describes where GCC release tarballs live. URL may contain "{version}".
type GCC struct {
	DefaultVersion string   `yaml:"default_version"`
	URL            string   `yaml:"url"`
	Packages       []string `yaml:"packages"`
}

// LLVM source can be fetched either as a shallow git clone ("git") or as the
// release tarball attached to the GitHub release ("tarball").
type LLVM struct {
	DefaultVersion string   `yaml:"default_version"`
	Source         string   `yaml:"source"`
	Repository     string   `yaml:"repository"`
	ReleaseRepo    string   `yaml:"release_repo"`
	APIBaseURL     string   `yaml:"api_base_url"`
	Projects       []string `yaml:"projects"`
	Packages       []string `yaml:"packages"`
}

// AOCC ships as a single pinned vendor tarball.
type AOCC struct {
	Version  string   `yaml:"version"`
	URL      string   `yaml:"url"`
	Packages []string `yaml:"packages"`
}

// Intel oneAPI is installed by running one or more offline installer scripts.
// Installers are run in the listed order; URLs may contain "{version}".
type Intel struct {
	Installers []string `yaml:"installers"`
	Packages   []string `yaml:"packages"`
}

// LLVM source modes.
const (
	SourceGit     = "git"
	SourceTarball = "tarball"
)
