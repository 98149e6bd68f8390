package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionFlag(t *testing.T) {
	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("0.1.0-test", []string{"--version"})
	})

	assert.NoError(t, err)
	assert.Equal(t, "triage 0.1.0-test", strings.TrimSpace(output))
}

func TestVersionFlagWithSubcommand(t *testing.T) {
	output := captureOutput(t, func() {
		_ = RunWithArgs("1.2.3", []string{"stats", "--version"})
	})
	assert.Equal(t, "triage 1.2.3", strings.TrimSpace(output))
}

func TestSubcommandsRegistered(t *testing.T) {
	parser, _, cmds := buildParser("test")

	for _, name := range []string{"classify", "history", "show", "remove", "clear", "stats", "retrain"} {
		assert.NotNil(t, parser.Find(name), "command %q should be registered", name)
	}
	assert.Nil(t, parser.Find("ingest"))

	require.NotNil(t, cmds.Classify)
	assert.Same(t, cmds.Classify.globals, cmds.History.globals, "commands share global flags")
}

func TestGlobalFlagsParsed(t *testing.T) {
	parser, globals, cmds := buildParser("test")
	parser.SubcommandsOptional = true

	_, err := parser.ParseArgs([]string{"--json", "--verbose", "--config", "/tmp/x.yaml"})
	require.NoError(t, err)
	assert.True(t, globals.JSON)
	assert.True(t, globals.Verbose)
	assert.Equal(t, "/tmp/x.yaml", globals.Config)
	assert.True(t, cmds.Stats.globals.JSON)
}

func TestUnknownCommand(t *testing.T) {
	var err error
	captureOutput(t, func() {
		err = RunWithArgs("test", []string{"ingest"})
	})
	assert.Error(t, err)
}
