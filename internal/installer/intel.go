package installer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"compiler-setup/internal/config"
	"compiler-setup/internal/logger"
	"compiler-setup/internal/modulefile"
	"compiler-setup/internal/pipeline"
	"compiler-setup/internal/runner"
	"compiler-setup/internal/toolchain"
)

// intelSteps fetches the oneAPI offline installers and runs each one silently
// against the installation directory. The vendor installers create the
// directory themselves; a final check fails the run if none of them did.
func intelSteps(in *Installer, p toolchain.Plan) []pipeline.Step {
	cfg := in.Config.Toolchains.Intel
	version := p.Request.Version

	steps := []pipeline.Step{
		in.prerequisitesStep(cfg.Packages),
		in.environmentModulesStep(),
	}

	scripts := make([]string, 0, len(cfg.Installers))
	for i, raw := range cfg.Installers {
		url := config.Expand(raw, version)
		if !strings.Contains(url, version) {
			logger.Warn("[WARN] Installer %s does not mention version %s; it will be installed as %s\n",
				fileNameFromURL(url), version, p.Request.ID())
		}
		script := filepath.Join(in.Layout.WorkDir, fileNameFromURL(url))
		scripts = append(scripts, script)
		steps = append(steps, in.downloadStep(fmt.Sprintf("download-installer-%d", i+1), script, staticURL(url)))
	}
	for i, script := range scripts {
		steps = append(steps, in.commandStep(fmt.Sprintf("run-installer-%d", i+1), runner.Command{
			Dir:  in.Layout.WorkDir,
			Name: "sh",
			Args: []string{
				script,
				"-a",
				"--silent",
				"--eula=accept",
				"--install-dir=" + p.InstallDir,
			},
		}))
	}
	return append(steps, verifyInstallDirStep(p.InstallDir))
}

// verifyInstallDirStep fails when installDir is still missing, so a module is
// never registered for an installation that did not happen.
func verifyInstallDirStep(installDir string) pipeline.Step {
	return pipeline.Step{
		Name: "verify-install-dir",
		Action: func(context.Context) error {
			if !isDir(installDir) {
				return fmt.Errorf("installers finished but %s was not created", installDir)
			}
			return nil
		},
	}
}

func intelModule(p toolchain.Plan) modulefile.Descriptor {
	return modulefile.Descriptor{
		Family:  string(toolchain.Intel),
		Version: p.Request.Version,
		Title:   toolchain.Intel.Title(),
		Root:    p.InstallDir,
		Variables: []modulefile.Var{
			{Name: "CC", Value: "$root/compiler/bin/icx"},
			{Name: "CXX", Value: "$root/compiler/bin/icpx"},
		},
		PathPrepends: []modulefile.Var{
			{Name: "PATH", Value: "compiler/bin"},
			{Name: "LD_LIBRARY_PATH", Value: "compiler/lib"},
		},
	}
}
