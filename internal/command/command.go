// Package command turns the raw subcommand tokens of a coco invocation into a typed Command.
package command

// Command is one of Delete, List, Help, Mkdir, Clear or Run
type Command interface {
	// Name returns the canonical subcommand name
	Name() string
	isCommand()
}

// Delete removes each target recursively
type Delete struct {
	Targets []string
	Options []DeleteOption
}

// List prints the entries below each target
type List struct {
	Targets []string
	Options []ListOption
}

// Help is produced when no subcommand is given
type Help struct{}

// Mkdir, Clear and Run are recognised but carry no behavior yet
type (
	Mkdir struct{}
	Clear struct{}
	Run   struct{}
)

func (Delete) Name() string { return "delete" }
func (List) Name() string   { return "list" }
func (Help) Name() string   { return "help" }
func (Mkdir) Name() string  { return "mkdir" }
func (Clear) Name() string  { return "clear" }
func (Run) Name() string    { return "run" }

func (Delete) isCommand() {}
func (List) isCommand()   {}
func (Help) isCommand()   {}
func (Mkdir) isCommand()  {}
func (Clear) isCommand()  {}
func (Run) isCommand()    {}

// Globs returns the --glob patterns given to delete, in order
func (d Delete) Globs() []string {
	var out []string
	for _, o := range d.Options {
		if g, ok := o.(GlobPattern); ok {
			out = append(out, string(g))
		}
	}
	return out
}

// Globs returns the --glob patterns given to list, in order
func (l List) Globs() []string {
	var out []string
	for _, o := range l.Options {
		if g, ok := o.(GlobPattern); ok {
			out = append(out, string(g))
		}
	}
	return out
}

// MaxDepth resolves Recursive and Depth into a descent limit.
// Depth always bounds the walk (last one wins); Recursive alone is unbounded (-1);
// with neither only the immediate children are listed (0).
func (l List) MaxDepth() int {
	depth, recursive, bounded := 0, false, false
	for _, o := range l.Options {
		switch v := o.(type) {
		case Recursive:
			recursive = true
		case Depth:
			depth, bounded = int(v), true
		}
	}
	switch {
	case bounded:
		return depth
	case recursive:
		return -1
	default:
		return 0
	}
}
