package toolchain

import (
	"os"
	"path/filepath"
)

// Plan is the planner's decision for one request.
type Plan struct {
	Request    Request
	InstallDir string
	// Skip is true when the toolchain is already installed. Expensive steps
	// are skipped; module registration and shell integration still run.
	Skip bool
}

// Marker returns the path whose existence proves that r is fully installed:
// the compiler driver for source builds, the installation directory itself
// for vendor payloads.
func Marker(r Request, installDir string) string {
	switch r.Family {
	case GCC:
		return filepath.Join(installDir, "bin", "gcc")
	case LLVM:
		return filepath.Join(installDir, "bin", "clang")
	default:
		return installDir
	}
}

// NewPlan computes the installation directory for r and checks its marker.
func NewPlan(r Request, l Layout) Plan {
	dir := l.InstallDir(r)
	return Plan{
		Request:    r,
		InstallDir: dir,
		Skip:       installed(r, dir),
	}
}

func installed(r Request, dir string) bool {
	info, err := os.Stat(Marker(r, dir))
	if err != nil {
		return false
	}
	switch r.Family {
	case GCC, LLVM:
		return info.Mode().IsRegular()
	default:
		return info.IsDir()
	}
}
