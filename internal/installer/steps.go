package installer

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"compiler-setup/internal/logger"
	"compiler-setup/internal/pipeline"
	"compiler-setup/internal/runner"
)

// prerequisitesStep refreshes the apt index and installs pkgs. Families with
// nothing to install skip it.
func (in *Installer) prerequisitesStep(pkgs []string) pipeline.Step {
	return pipeline.Step{
		Name: "install-prerequisites",
		SkipIf: func(context.Context) bool {
			return len(pkgs) == 0
		},
		Action: func(ctx context.Context) error {
			logger.Info("[INFO] Installing required packages: %s\n", strings.Join(pkgs, " "))
			if err := runner.Check(ctx, in.Runner, runner.Command{Name: "sudo", Args: []string{"apt", "update"}}); err != nil {
				return err
			}
			args := append([]string{"apt", "install", "-y"}, pkgs...)
			return runner.Check(ctx, in.Runner, runner.Command{Name: "sudo", Args: args})
		},
	}
}

// environmentModulesStep installs the environment-modules runtime unless the
// `module` command already resolves.
func (in *Installer) environmentModulesStep() pipeline.Step {
	return pipeline.Step{
		Name: "install-environment-modules",
		SkipIf: func(ctx context.Context) bool {
			return runner.Available(ctx, in.Runner, "module")
		},
		Action: func(ctx context.Context) error {
			return runner.Check(ctx, in.Runner, runner.Command{
				Name: "sudo",
				Args: []string{"apt", "install", "--no-install-recommends", "-y", "environment-modules"},
			})
		},
	}
}

// downloadStep fetches a payload into dest unless dest already exists. The URL
// is resolved lazily so lookups (GitHub API) only happen when needed.
func (in *Installer) downloadStep(name, dest string, resolve func(ctx context.Context) (string, error)) pipeline.Step {
	return pipeline.Step{
		Name: name,
		SkipIf: func(context.Context) bool {
			if exists(dest) {
				logger.Info("[INFO] '%s' already exists. Skipping download.\n", filepath.Base(dest))
				return true
			}
			return false
		},
		Action: func(ctx context.Context) error {
			u, err := resolve(ctx)
			if err != nil {
				return err
			}
			logger.Info("[INFO] Downloading %s\n", u)
			return downloadFile(ctx, in.Client, u, dest, in.Progress)
		},
	}
}

// staticURL adapts a fixed URL to downloadStep.
func staticURL(u string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return u, nil }
}

// extractSourceStep unpacks archive into the working directory and makes sure
// the result is called canonical, renaming the archive's top-level directory
// when it differs (llvm-project-19.1.3.src -> llvm-project-19.1.3).
func (in *Installer) extractSourceStep(archive, canonical string) pipeline.Step {
	return pipeline.Step{
		Name: "extract-source",
		Action: func(context.Context) error {
			logger.Info("[INFO] Extracting %s\n", filepath.Base(archive))
			top, err := ExtractArchive(archive, in.Layout.WorkDir, ExtractOptions{})
			if err != nil {
				return err
			}
			want := filepath.Join(in.Layout.WorkDir, canonical)
			if top == want {
				return nil
			}
			if top == in.Layout.WorkDir {
				return fmt.Errorf("archive %s has no top-level directory", archive)
			}
			logger.Debug("[DEBUG] Renaming %s to %s\n", top, want)
			return replaceDir(top, want)
		},
	}
}

// commandStep runs one external command and fails on a non-zero exit.
func (in *Installer) commandStep(name string, cmd runner.Command) pipeline.Step {
	return pipeline.Step{
		Name: name,
		Action: func(ctx context.Context) error {
			return runner.Check(ctx, in.Runner, cmd)
		},
	}
}

// fileNameFromURL returns the last path element of a download URL, ignoring
// any query string.
func fileNameFromURL(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(raw)
}
