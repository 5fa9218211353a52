package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "srxgate", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expected := []string{"init", "apply", "serve", "usage", "doctor", "version", "completion"}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, subcommands[name], "Expected subcommand %s not found", name)
	}
	assert.Len(t, cmd.Commands(), len(expected))
}

func TestRoot_PersistentFlags(t *testing.T) {
	cmd := Root()

	level := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, level)
	assert.Equal(t, "info", level.DefValue)

	format := cmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, format)
	assert.Equal(t, "auto", format.DefValue)
}

func TestRoot_InvalidLogFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "level", args: []string{"--log-level", "loud", "version"}},
		{name: "format", args: []string{"--log-format", "xml", "version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := Root()
			root.SetOut(&bytes.Buffer{})
			root.SetArgs(tt.args)
			assert.Error(t, root.Execute())
		})
	}
}

func TestApply_RequiresFile(t *testing.T) {
	root := Root()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"apply"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"file" not set`)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   map[string]string
	}{
		{command: "init", flags: map[string]string{"output": "srxgate.yaml", "advanced": "false", "full": "false"}},
		{command: "apply", flags: map[string]string{"config": "", "file": "", "json": "false"}},
		{command: "serve", flags: map[string]string{"config": "", "listen": ":9480", "wait": "0s"}},
		{command: "usage", flags: map[string]string{"config": "", "watch": "false", "json": "false"}},
		{command: "doctor", flags: map[string]string{"config": "", "json": "false"}},
	}

	root := Root()
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			cmd, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			for name, def := range tt.flags {
				f := cmd.Flags().Lookup(name)
				require.NotNil(t, f, "flag %s", name)
				assert.Equal(t, def, f.DefValue, "flag %s", name)
			}
		})
	}
}
