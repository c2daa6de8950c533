package installer

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"compiler-setup/internal/config"
	"compiler-setup/internal/logger"
	"compiler-setup/internal/modulefile"
	"compiler-setup/internal/pipeline"
	"compiler-setup/internal/runner"
	"compiler-setup/internal/toolchain"
)

// llvmSteps builds the LLVM subset (clang, lld, flang, openmp,
// clang-tools-extra by default) with CMake.
func llvmSteps(in *Installer, p toolchain.Plan) []pipeline.Step {
	cfg := in.Config.Toolchains.LLVM
	version := p.Request.Version

	srcName := "llvm-project-" + version
	srcDir := filepath.Join(in.Layout.WorkDir, srcName)
	buildDir := filepath.Join(srcDir, "build")

	steps := []pipeline.Step{
		in.prerequisitesStep(cfg.Packages),
		in.environmentModulesStep(),
	}

	if cfg.Source == config.SourceTarball {
		asset := srcName + ".src.tar.xz"
		tarball := filepath.Join(in.Layout.WorkDir, asset)
		resolve := func(ctx context.Context) (string, error) {
			return releaseAssetURL(ctx, in.Client, cfg.APIBaseURL, cfg.ReleaseRepo, "llvmorg-"+version, asset)
		}
		steps = append(steps,
			in.downloadStep("download-source", tarball, resolve),
			in.extractSourceStep(tarball, srcName),
		)
	} else {
		steps = append(steps, in.cloneStep(cfg.Repository, "llvmorg-"+version, srcDir))
	}

	return append(steps,
		in.commandStep("configure", runner.Command{
			Name: "cmake",
			Args: []string{
				"-S", filepath.Join(srcDir, "llvm"),
				"-B", buildDir,
				"-DCMAKE_BUILD_TYPE=Release",
				"-DLLVM_ENABLE_PROJECTS=" + strings.Join(cfg.Projects, ";"),
			},
		}),
		in.commandStep("build", runner.Command{
			Name: "cmake",
			Args: []string{"--build", buildDir, "-j" + strconv.Itoa(in.jobs())},
		}),
		in.commandStep("install", runner.Command{
			Name: "cmake",
			Args: []string{"--install", buildDir, "--prefix", p.InstallDir},
		}),
		copyOpenMPStep(p.InstallDir),
	)
}

// cloneStep shallow-clones tag into dir. The clone goes to dir+".partial" and
// is renamed when complete, so an existing dir always holds a full checkout
// and is reused as-is.
func (in *Installer) cloneStep(repo, tag, dir string) pipeline.Step {
	return pipeline.Step{
		Name: "clone-source",
		SkipIf: func(context.Context) bool {
			if isDir(dir) {
				logger.Info("[INFO] '%s' already exists. Skipping clone.\n", filepath.Base(dir))
				return true
			}
			return false
		},
		Action: func(ctx context.Context) error {
			partial := dir + ".partial"
			// git refuses to clone into a non-empty directory
			if err := os.RemoveAll(partial); err != nil {
				return err
			}
			logger.Info("[INFO] Cloning %s at %s\n", repo, tag)
			err := runner.Check(ctx, in.Runner, runner.Command{
				Dir:  in.Layout.WorkDir,
				Name: "git",
				Args: []string{"clone", "--depth", "1", "--branch=" + tag, repo, partial},
			})
			if err != nil {
				return err
			}
			return replaceDir(partial, dir)
		},
	}
}

// copyOpenMPStep copies libomp.so from the target-triple library directory
// (lib/x86_64-unknown-linux-gnu/) to lib/, where tools that do not know the
// triple look for it. A missing runtime is only a warning.
func copyOpenMPStep(installDir string) pipeline.Step {
	return pipeline.Step{
		Name: "copy-openmp-runtime",
		Action: func(context.Context) error {
			dest := filepath.Join(installDir, "lib", "libomp.so")
			matches, err := filepath.Glob(filepath.Join(installDir, "lib", "*", "libomp.so"))
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				logger.Warn("[WARN] No target-specific libomp.so under %s; leaving lib/ as installed\n", filepath.Join(installDir, "lib"))
				return nil
			}
			if err := copyFile(matches[0], dest); err != nil {
				return err
			}
			logger.Info("[INFO] Copied libomp.so from %s to %s\n", matches[0], dest)
			return nil
		},
	}
}

func llvmModule(p toolchain.Plan) modulefile.Descriptor {
	return modulefile.Descriptor{
		Family:  string(toolchain.LLVM),
		Version: p.Request.Version,
		Title:   toolchain.LLVM.Title(),
		Root:    p.InstallDir,
		Variables: []modulefile.Var{
			{Name: "CC", Value: "$root/bin/clang"},
			{Name: "CXX", Value: "$root/bin/clang++"},
		},
		PathPrepends: []modulefile.Var{
			{Name: "PATH", Value: "bin"},
			{Name: "LD_LIBRARY_PATH", Value: "lib"},
		},
	}
}
