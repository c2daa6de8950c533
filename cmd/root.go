package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"compiler-setup/internal/config"
	"compiler-setup/internal/logger"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// configPath holds the path to the YAML configuration overlay.
// It's passed via the `--config` or `-c` flag; a missing file means defaults.
var configPath string

// rootCmd is the base command for the CLI tool `compiler-setup`.
// It sets up the root-level CLI structure and provides global flags.
var rootCmd = &cobra.Command{
	Use:   "compiler-setup",
	Short: "Install compiler toolchains and register them as environment modules",
	Long: `compiler-setup builds or unpacks a compiler toolchain (GCC, LLVM, AMD AOCC or
Intel oneAPI) into a per-version directory, writes an environment-modules
modulefile for it and makes sure the shell profile exports MODULEPATH.

Running the same install twice is safe: an installed toolchain is detected
and only its modulefile and shell integration are refreshed.`,
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRun is a hook that runs before any subcommand.
	// Here, we initialize the logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to configuration file")
}

// Execute runs the selected subcommand and exits with its status.
func Execute() {
	// Ctrl-C cancels the running step; the pipeline stops before the next one.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// execute runs the CLI with args and returns the process exit status. Any
// error yields status 1 after a single [ERROR] line.
func execute(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("[ERROR] %v\n", err)
		return 1
	}
	return 0
}
