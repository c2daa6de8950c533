// Package modulefile renders and writes environment-module descriptors
// (Tcl modulefiles) for installed toolchains.
package modulefile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"compiler-setup/internal/logger"
)

// Var is one variable assignment. In PathPrepends, Value is a directory
// relative to the toolchain root.
type Var struct {
	Name  string
	Value string
}

// Descriptor describes one module file. Slices keep their order in the
// rendered file so that two renders of the same descriptor are identical.
type Descriptor struct {
	Family  string
	Version string
	Title   string
	Root    string
	// Variables are set with setenv. Values may reference the root as $root.
	Variables []Var
	// PathPrepends are prepended with prepend-path, so the toolchain wins
	// over whatever the system already has on the same variable.
	PathPrepends []Var
}

// Name is the module file name, "<family>-<version>".
func (d Descriptor) Name() string {
	return d.Family + "-" + d.Version
}

// Render produces the module file contents.
func Render(d Descriptor) []byte {
	var b bytes.Buffer
	name := d.Name()

	b.WriteString("#%Module1.0\n\n")
	b.WriteString("proc ModulesHelp { } {\n")
	b.WriteString("    global version modroot\n")
	fmt.Fprintf(&b, "    puts stderr \"%s version %s - sets the environment for %s\"\n", d.Title, d.Version, name)
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "module-whatis \"Sets the environment for %s version %s\"\n\n", d.Title, d.Version)

	fmt.Fprintf(&b, "set root %s\n", tclQuote(d.Root))
	fmt.Fprintf(&b, "set version %s\n\n", tclQuote(d.Version))

	for _, v := range d.Variables {
		fmt.Fprintf(&b, "setenv %-20s %s\n", v.Name, setenvValue(v.Value))
	}
	for _, p := range d.PathPrepends {
		fmt.Fprintf(&b, "prepend-path %-20s %s\n", p.Name, rootPath(p.Value))
	}
	return b.Bytes()
}

// Register writes d under moduleRoot/<family>/<family>-<version>, replacing
// any previous file. It returns the path written.
func Register(moduleRoot string, d Descriptor) (string, error) {
	dir := filepath.Join(moduleRoot, d.Family)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create module directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, d.Name())
	if err := os.WriteFile(path, Render(d), 0o644); err != nil {
		return "", fmt.Errorf("failed to write module file %s: %w", path, err)
	}
	logger.Info("[INFO] Module file written to %s\n", path)
	return path, nil
}

// rootPath joins a root-relative directory onto $root.
func rootPath(rel string) string {
	rel = strings.Trim(rel, "/")
	if rel == "" || rel == "." {
		return "$root"
	}
	return "$root/" + rel
}

// setenvValue writes values verbatim so they can reference $root; only the
// empty value needs braces.
func setenvValue(v string) string {
	if v == "" {
		return "{}"
	}
	return v
}

// tclQuote braces values containing characters Tcl would otherwise split or
// substitute.
func tclQuote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"$[]{};\\") {
		return "{" + s + "}"
	}
	return s
}
