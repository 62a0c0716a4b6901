package exitcodes

// Exit codes for coco
// These codes form the contract with shell scripts wrapping coco
const (
	Success         = 0  // Successful execution
	InvalidConfig   = 2  // Configuration file invalid or unreadable
	SafetyViolation = 3  // Safety validator blocked a delete target
	RuntimeError    = 4  // Filesystem operation failed
	UsageError      = 64 // Bad subcommand, missing target or malformed option (EX_USAGE)
	Unsupported     = 69 // Command recognised but not implemented (EX_UNAVAILABLE)
)
