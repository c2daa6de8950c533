package installer

import (
	"context"
	"os"
	"path/filepath"

	"compiler-setup/internal/config"
	"compiler-setup/internal/logger"
	"compiler-setup/internal/modulefile"
	"compiler-setup/internal/pipeline"
	"compiler-setup/internal/toolchain"
)

// aoccSteps unpacks AMD's prebuilt compiler tarball. There is no build step:
// extraction is the installation.
func aoccSteps(in *Installer, p toolchain.Plan) []pipeline.Step {
	cfg := in.Config.Toolchains.AOCC
	url := config.Expand(cfg.URL, p.Request.Version)
	tarball := filepath.Join(in.Layout.WorkDir, fileNameFromURL(url))

	return []pipeline.Step{
		in.prerequisitesStep(cfg.Packages),
		in.environmentModulesStep(),
		in.downloadStep("download-payload", tarball, staticURL(url)),
		extractPayloadStep(tarball, p.InstallDir),
	}
}

// extractPayloadStep extracts a vendor tarball with its top-level directory
// stripped. It unpacks into installDir+".partial" and renames at the end:
// the planner treats an existing installDir as "installed", so it must only
// appear once extraction has finished.
func extractPayloadStep(tarball, installDir string) pipeline.Step {
	return pipeline.Step{
		Name: "extract-payload",
		Action: func(context.Context) error {
			staging := installDir + ".partial"
			if err := os.RemoveAll(staging); err != nil {
				return err
			}
			logger.Info("[INFO] Extracting %s into %s\n", filepath.Base(tarball), installDir)
			if _, err := ExtractArchive(tarball, staging, ExtractOptions{StripComponents: 1}); err != nil {
				return err
			}
			return replaceDir(staging, installDir)
		},
	}
}

func aoccModule(p toolchain.Plan) modulefile.Descriptor {
	return modulefile.Descriptor{
		Family:  string(toolchain.AOCC),
		Version: p.Request.Version,
		Title:   toolchain.AOCC.Title(),
		Root:    p.InstallDir,
		Variables: []modulefile.Var{
			{Name: "COMPILERROOT", Value: "$root"},
			{Name: "AOCCROOT", Value: "$root"},
			{Name: "CC", Value: "$root/bin/clang"},
			{Name: "CXX", Value: "$root/bin/clang++"},
			{Name: "FC", Value: "$root/bin/flang"},
			{Name: "F90", Value: "$root/bin/flang"},
		},
		PathPrepends: []modulefile.Var{
			{Name: "PATH", Value: "bin"},
			{Name: "LIBRARY_PATH", Value: "lib"},
			{Name: "LD_LIBRARY_PATH", Value: "lib"},
			{Name: "C_INCLUDE_PATH", Value: "include"},
			{Name: "CPLUS_INCLUDE_PATH", Value: "include"},
		},
	}
}
