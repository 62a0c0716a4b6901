package command

import (
	"fmt"
	"strconv"
	"strings"

	"coco/internal/match"
)

const flagPrefix = "--"

// Parsed is the outcome of parsing: the command plus any non-fatal warnings
type Parsed struct {
	Command  Command
	Warnings []string
}

// Spec describes a subcommand for help output and routing
type Spec struct {
	Name    string
	Aliases []string
	Usage   string
	Summary string
}

var specs = []Spec{
	{Name: "delete", Aliases: []string{"del"}, Usage: "delete <target>... [--glob=<pattern>]", Summary: "Delete files and directories recursively"},
	{Name: "list", Aliases: []string{"ls"}, Usage: "list [target]... [--glob=<pattern>] [--recursive] [--depth=<n>]", Summary: "List the entries of directories"},
	{Name: "clear", Aliases: []string{"cls"}, Usage: "clear", Summary: "Clear the terminal (not yet supported)"},
	{Name: "mkdir", Usage: "mkdir", Summary: "Make a new directory (not yet supported)"},
	{Name: "run", Usage: "run", Summary: "Run an external command (not yet supported)"},
}

// Specs returns the subcommands coco recognises
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Parse builds a command from a full argument vector whose first element is the
// invocation token (the running binary). workDir is the default list target.
func Parse(argv []string, workDir string) (*Parsed, error) {
	if len(argv) == 0 {
		return nil, ErrEnvironmentUnavailable
	}
	if len(argv) == 1 {
		return &Parsed{Command: Help{}}, nil
	}
	return New(argv[1], argv[2:], workDir)
}

// New builds the command for subcommand name from the tokens that follow it
func New(name string, tokens []string, workDir string) (*Parsed, error) {
	switch name {
	case "delete", "del":
		return parseDelete(tokens)
	case "list", "ls":
		return parseList(tokens, workDir)
	case "clear", "cls":
		return &Parsed{Command: Clear{}}, nil
	case "mkdir":
		return &Parsed{Command: Mkdir{}}, nil
	case "run":
		return &Parsed{Command: Run{}}, nil
	default:
		return nil, &UnrecognizedCommandError{Name: name}
	}
}

func parseDelete(tokens []string) (*Parsed, error) {
	var (
		targets  []string
		options  []DeleteOption
		warnings []string
	)
	for _, tok := range tokens {
		if !strings.HasPrefix(tok, flagPrefix) {
			targets = append(targets, tok)
			continue
		}
		name, value, hasValue := splitFlag(tok)
		switch name {
		case "glob":
			g, err := parseGlob(tok, value, hasValue)
			if err != nil {
				return nil, err
			}
			options = append(options, g)
		default:
			warnings = append(warnings, invalidArgument(tok))
		}
	}
	if len(targets) == 0 {
		return nil, ErrTargetMissing
	}
	return &Parsed{Command: Delete{Targets: targets, Options: options}, Warnings: warnings}, nil
}

func parseList(tokens []string, workDir string) (*Parsed, error) {
	var (
		targets  []string
		options  []ListOption
		warnings []string
	)
	for _, tok := range tokens {
		if !strings.HasPrefix(tok, flagPrefix) {
			targets = append(targets, tok)
			continue
		}
		name, value, hasValue := splitFlag(tok)
		switch name {
		case "glob":
			g, err := parseGlob(tok, value, hasValue)
			if err != nil {
				return nil, err
			}
			options = append(options, g)
		case "recursive":
			if hasValue {
				return nil, fmt.Errorf("%w: %q takes no value", ErrInvalidOption, tok)
			}
			options = append(options, Recursive{})
		case "depth":
			d, err := parseDepth(tok, value, hasValue)
			if err != nil {
				return nil, err
			}
			options = append(options, d)
		default:
			warnings = append(warnings, invalidArgument(tok))
		}
	}
	if len(targets) == 0 {
		targets = append(targets, workDir)
	}
	return &Parsed{Command: List{Targets: targets, Options: options}, Warnings: warnings}, nil
}

// splitFlag splits "--name=value" into its parts
func splitFlag(tok string) (name, value string, hasValue bool) {
	body := strings.TrimPrefix(tok, flagPrefix)
	name, value, hasValue = strings.Cut(body, "=")
	return name, value, hasValue
}

func parseGlob(tok, value string, hasValue bool) (GlobPattern, error) {
	if !hasValue || value == "" {
		return "", fmt.Errorf("%w: %q requires a pattern, e.g. --glob=*.rs", ErrInvalidOption, tok)
	}
	if _, err := match.Compile(value); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	return GlobPattern(value), nil
}

func parseDepth(tok, value string, hasValue bool) (Depth, error) {
	if !hasValue || value == "" {
		return 0, fmt.Errorf("%w: %q requires a number, e.g. --depth=3", ErrInvalidOption, tok)
	}
	n, err := strconv.ParseUint(value, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidOption, tok)
	}
	return Depth(n), nil
}

func invalidArgument(tok string) string {
	return fmt.Sprintf("Invalid argument %q.", tok)
}
