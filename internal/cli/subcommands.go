package cli

import (
	"github.com/spf13/cobra"

	"coco/internal/command"
)

var subcommandHelp = map[string]string{
	"delete": `Recursively delete each target, children before parents.

Symbolic links are removed, never followed. The first failure stops the
command; entries removed before it stay removed. With --glob the target
itself is kept and only entries below it whose name matches are removed.

Examples:
  coco delete build                # Remove build and everything below it
  coco del --glob=*.pyc src        # Remove compiled Python files below src`,
	"list": `List the entries of each target, one path per line.

Without a target the current directory is listed. By default only the
immediate children are printed; --recursive descends without limit and
--depth=<n> descends at most n levels (and wins over --recursive).

Examples:
  coco ls
  coco list src --glob=*.go --depth=2`,
}

// newSubcommands creates one cobra command per recognised command name.
// Flag parsing is disabled: the tokens are handed to the command grammar
// unchanged so unknown flags become warnings instead of errors.
func (s *shell) newSubcommands() []*cobra.Command {
	specs := command.Specs()
	cmds := make([]*cobra.Command, 0, len(specs))
	for _, spec := range specs {
		cmds = append(cmds, &cobra.Command{
			Use:                spec.Usage,
			Aliases:            spec.Aliases,
			Short:              spec.Summary,
			Long:               subcommandHelp[spec.Name],
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 1 && (args[0] == "--help" || args[0] == "-h") {
					return cmd.Help()
				}
				return s.dispatch(cmd, append([]string{spec.Name}, args...))
			},
		})
	}
	return cmds
}
