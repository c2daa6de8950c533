package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"compiler-setup/internal/config"
	"compiler-setup/internal/installer"
	"compiler-setup/internal/logger"
	"compiler-setup/internal/runner"
	"compiler-setup/internal/toolchain"
)

// dryRun prints the plan and the steps that would run without executing any.
var dryRun bool

// installCmd is the parent of the per-family install commands.
// Known families are dispatched to their subcommands, so RunE only sees
// unknown ones.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install a compiler toolchain and register its modulefile",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		if _, err := toolchain.ParseFamily(args[0]); err != nil {
			return err
		}
		return cmd.Help()
	},
}

// newInstallCmd builds the install subcommand for one toolchain family.
// maxArgs is 0 for families without a user-selectable version.
func newInstallCmd(family toolchain.Family, use, short string, maxArgs int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(maxArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := ""
			if len(args) > 0 {
				version = args[0]
			}
			return runInstall(cmd, family, version)
		},
	}
}

// runInstall loads configuration, resolves the request and either runs the
// pipeline or, with --dry-run, describes it.
func runInstall(cmd *cobra.Command, family toolchain.Family, version string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger.Debug("[DEBUG] Loaded configuration from %s\n", configPath)

	req, err := toolchain.NewRequest(family, version, cfg.Toolchains)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	layout := toolchain.NewLayout(cfg.Paths, cwd)
	in := installer.New(cfg, layout, runner.NewExecRunner())
	ctx := cmd.Context()

	if dryRun {
		plan, steps, err := in.DryRun(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", family.Title(), req.Version, plan.InstallDir)
		if plan.Skip {
			fmt.Fprintln(cmd.OutOrStdout(), "already installed; only registration would run")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "steps: %s\n", strings.Join(steps, ", "))
		return nil
	}

	res, err := in.Install(ctx, req)
	if err != nil {
		return err
	}
	logger.Info("[INFO] %s version %s is ready. Load it with 'module load %s/%s'.\n",
		family.Title(), req.Version, family, req.ID())
	logger.Debug("[DEBUG] Modulefile written to %s\n", res.ModuleFile)
	return nil
}

func init() {
	installCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print the plan without executing any step")

	installCmd.AddCommand(
		newInstallCmd(toolchain.GCC, "gcc [version]", "Build GCC from the GNU release tarball", 1),
		newInstallCmd(toolchain.LLVM, "llvm [version]", "Build LLVM (clang, lld, flang, openmp) with CMake", 1),
		newInstallCmd(toolchain.AOCC, "aocc", "Unpack the AMD Optimizing C/C++ and Fortran Compilers", 0),
		newInstallCmd(toolchain.Intel, "intel <version>", "Run the Intel oneAPI Base and HPC Toolkit installers", 1),
	)
	rootCmd.AddCommand(installCmd)
}
