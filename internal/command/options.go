package command

// DeleteOption is a recognised delete flag
type DeleteOption interface {
	deleteOption()
}

// ListOption is a recognised list flag
type ListOption interface {
	listOption()
}

// GlobPattern restricts an operation to entries whose name matches (--glob=<pattern>)
type GlobPattern string

// Recursive extends a listing into subdirectories (--recursive)
type Recursive struct{}

// Depth limits how many levels below the target a listing descends (--depth=<n>)
type Depth uint

func (GlobPattern) deleteOption() {}
func (GlobPattern) listOption()   {}
func (Recursive) listOption()     {}
func (Depth) listOption()         {}
