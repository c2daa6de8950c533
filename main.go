package main

import (
	"compiler-setup/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// compiler-setup provisions compiler toolchains on a Debian/Ubuntu workstation:
//   - GCC and LLVM are built from source, AMD AOCC is unpacked from its vendor tarball,
//     and Intel oneAPI is installed by running the offline installers silently
//   - Each toolchain lands in its own versioned directory and gets a Tcl modulefile,
//     so it can be activated with `module load`
//   - The shell profile is taught about the modulefile directory exactly once
//
// Every run is idempotent: an installed toolchain skips straight to registration,
// and downloads or checkouts already on disk are reused. The first failing step
// aborts the run with a non-zero exit status.
func main() {
	cmd.Execute()
}
