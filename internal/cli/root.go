package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (s *shell) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "coco [global flags] <command> [targets...] [--flags]",
		Short: "Delete and list files from the command line",
		Long: `coco - a small file management tool.

Commands:
  delete, del   Recursively delete each target
                  --glob=<pattern>   only delete entries whose name matches
  list, ls      List the entries of each target (default: current directory)
                  --glob=<pattern>   only print entries whose name matches
                  --recursive        descend into subdirectories
                  --depth=<n>        descend at most n levels
  clear, cls    Clear the terminal (not yet supported)
  mkdir, run    Reserved (not yet supported)

Unknown --flags after a command are reported and ignored.

Examples:
  coco delete build dist              # Remove two directory trees
  coco del --glob=*.orig .            # Remove merge leftovers below .
  coco ls src --glob=*.rs --recursive # List Rust sources
  coco --color=never ls --depth=1     # Two levels, no color`,
		Args:               cobra.ArbitraryArgs,
		TraverseChildren:   true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.dispatch(cmd, args)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default $XDG_CONFIG_HOME/coco/config.yaml)")
	flags.String("color", "", "color output: auto, always or never")
	flags.String("log-level", "", "diagnostic log level: trace, debug, info, warn or error")

	// Flag parsing stops at the command name, everything after it belongs
	// to the command's own grammar
	root.Flags().SetInterspersed(false)

	s.bindGlobals(root)
	for _, sub := range s.newSubcommands() {
		root.AddCommand(sub)
	}
	return root
}

// bindGlobals layers COCO_* environment variables under the global flags
func (s *shell) bindGlobals(root *cobra.Command) {
	v := s.viper
	v.SetEnvPrefix("COCO")

	bindings := map[string]string{
		"config":    "config",
		"color":     "color",
		"log_level": "log-level",
	}
	for key, flag := range bindings {
		// Errors only occur for a nil flag or an empty key
		if err := v.BindPFlag(key, root.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
		if err := v.BindEnv(key); err != nil {
			panic(fmt.Sprintf("bind env %s: %v", key, err))
		}
	}
}
