package installer

import (
	"path/filepath"
	"strconv"

	"compiler-setup/internal/config"
	"compiler-setup/internal/modulefile"
	"compiler-setup/internal/pipeline"
	"compiler-setup/internal/runner"
	"compiler-setup/internal/toolchain"
)

// gccSteps builds GCC from the release tarball with an in-tree
// configure/make/make install.
func gccSteps(in *Installer, p toolchain.Plan) []pipeline.Step {
	cfg := in.Config.Toolchains.GCC
	version := p.Request.Version

	url := config.Expand(cfg.URL, version)
	tarball := filepath.Join(in.Layout.WorkDir, fileNameFromURL(url))
	srcName := "gcc-" + version
	srcDir := filepath.Join(in.Layout.WorkDir, srcName)

	return []pipeline.Step{
		in.prerequisitesStep(cfg.Packages),
		in.environmentModulesStep(),
		in.downloadStep("download-source", tarball, staticURL(url)),
		in.extractSourceStep(tarball, srcName),
		in.commandStep("configure", runner.Command{
			Dir:  srcDir,
			Name: "./configure",
			Args: []string{
				"--prefix=" + p.InstallDir,
				"--enable-checking=release",
				"--enable-languages=c,c++,fortran",
				"--disable-multilib",
			},
		}),
		in.commandStep("build", runner.Command{
			Dir:  srcDir,
			Name: "make",
			Args: []string{"-j" + strconv.Itoa(in.jobs())},
		}),
		in.commandStep("install", runner.Command{
			Dir:  srcDir,
			Name: "make",
			Args: []string{"install"},
		}),
	}
}

func gccModule(p toolchain.Plan) modulefile.Descriptor {
	return modulefile.Descriptor{
		Family:  string(toolchain.GCC),
		Version: p.Request.Version,
		Title:   toolchain.GCC.Title(),
		Root:    p.InstallDir,
		Variables: []modulefile.Var{
			{Name: "CC", Value: "$root/bin/gcc"},
			{Name: "CXX", Value: "$root/bin/g++"},
			{Name: "FC", Value: "$root/bin/gfortran"},
			{Name: "F90", Value: "$root/bin/gfortran"},
		},
		PathPrepends: []modulefile.Var{
			{Name: "PATH", Value: "bin"},
			{Name: "LD_LIBRARY_PATH", Value: "lib"},
			{Name: "LD_LIBRARY_PATH", Value: "lib64"},
		},
	}
}
