package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ClassifyCommand — classify an email and record it in the history.
type ClassifyCommand struct {
	Text   string `long:"text" description:"Email text to classify"`
	File   string `long:"file" description:"Path to a .txt or .pdf email file"`
	Prompt string `long:"prompt" description:"Full instruction prompt; the email is taken after \"Email para análise:\""`

	globals *GlobalFlags
	version string
}

// HistoryCommand — list past classifications.
type HistoryCommand struct {
	Order  string `long:"order" description:"Sort order: -created_date (newest first) or created_date" default:"-created_date"`
	Label  string `long:"label" description:"Only entries with this label (productive | unproductive)"`
	Search string `long:"search" description:"Case-insensitive text to look for in content and file name"`
	Limit  int    `long:"limit" description:"Maximum results (0 for all)" default:"20"`

	globals *GlobalFlags
	version string
}

// ShowCommand — print one history entry in full.
type ShowCommand struct {
	ID string `long:"id" description:"Entry ID (required)"`

	globals *GlobalFlags
	version string
}

// RemoveCommand — delete one history entry.
type RemoveCommand struct {
	ID string `long:"id" description:"Entry ID (required)"`

	globals *GlobalFlags
	version string
}

// ClearCommand — delete the whole history with safety confirmation.
type ClearCommand struct {
	All   bool `long:"all" description:"Required flag to confirm clear intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	in      io.Reader // injectable for testing; nil means os.Stdin
}

// StatsCommand — show history statistics and configuration summary.
type StatsCommand struct {
	globals *GlobalFlags
	version string
}

// RetrainCommand — submit the history as training examples.
type RetrainCommand struct {
	globals *GlobalFlags
	version string
}
