package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"compiler-setup/internal/config"
	"compiler-setup/internal/state"
	"compiler-setup/internal/toolchain"
)

// listCmd prints the toolchains this tool has installed, from the state ledger.
// An optional family argument narrows the output to that family.
var listCmd = &cobra.Command{
	Use:   "list [family]",
	Short: "List toolchains installed by compiler-setup",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var family toolchain.Family
		if len(args) == 1 {
			f, err := toolchain.ParseFamily(args[0])
			if err != nil {
				return err
			}
			family = f
		}

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		st, err := state.LoadState(cfg.Paths.StateFile)
		if err != nil {
			return err
		}

		var entries []state.ToolchainState
		for _, e := range st.Sorted() {
			if family == "" || e.Family == string(family) {
				entries = append(entries, e)
			}
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No toolchains installed yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FAMILY\tVERSION\tINSTALLED\tLOCATION")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Family, e.Version, e.InstalledAt.Local().Format("2006-01-02 15:04"), e.InstallDir)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
