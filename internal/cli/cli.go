package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Classify *ClassifyCommand
	History  *HistoryCommand
	Show     *ShowCommand
	Remove   *RemoveCommand
	Clear    *ClearCommand
	Stats    *StatsCommand
	Retrain  *RetrainCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "triage"
	parser.LongDescription = "Classify emails as productive or unproductive, with a local fallback when the classification service is down."

	cmds := &commands{
		Classify: &ClassifyCommand{globals: &globals, version: version},
		History:  &HistoryCommand{globals: &globals, version: version},
		Show:     &ShowCommand{globals: &globals, version: version},
		Remove:   &RemoveCommand{globals: &globals, version: version},
		Clear:    &ClearCommand{globals: &globals, version: version},
		Stats:    &StatsCommand{globals: &globals, version: version},
		Retrain:  &RetrainCommand{globals: &globals, version: version},
	}

	parser.AddCommand("classify", "Classify an email", "Classify an email from text, a file or a legacy prompt, and record the result in the history.", cmds.Classify)
	parser.AddCommand("history", "List past classifications", "List past classifications, with optional label and text filters.", cmds.History)
	parser.AddCommand("show", "Print one classification", "Print the full stored record of a classification.", cmds.Show)
	parser.AddCommand("remove", "Delete one classification", "Delete one classification from the history.", cmds.Remove)
	parser.AddCommand("clear", "Delete the whole history", "Delete the whole classification history. Destructive operation with safety prompt.", cmds.Clear)
	parser.AddCommand("stats", "Show history statistics", "Show classification counts, averages and configuration summary.", cmds.Stats)
	parser.AddCommand("retrain", "Submit history for retraining", "Submit the classification history to the service as training examples.", cmds.Retrain)

	return parser, &globals, cmds
}

// Run is the main entry point for the triage CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("triage %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
