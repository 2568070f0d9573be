package entities

// LaunchMode selects what the product process does once started.
type LaunchMode string

const (
	LaunchModeRun     LaunchMode = "run"
	LaunchModeUpgrade LaunchMode = "upgrade"
	LaunchModeTest    LaunchMode = "test"
	LaunchModeShell   LaunchMode = "shell"
)

// RequiresModules reports whether the mode is meaningless without modules.
func (m LaunchMode) RequiresModules() bool {
	return m == LaunchModeUpgrade || m == LaunchModeTest
}

// LaunchPlan is a fully assembled product invocation.
type LaunchPlan struct {
	Mode        LaunchMode
	Database    string
	Environment Environment
	// AddonsPath in search order: project paths, enterprise, community.
	AddonsPath []string
	Modules    []string
	// Args are the product's own command-line arguments.
	Args []string
}
