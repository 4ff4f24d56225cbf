package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdRequiresKommoCredentials(t *testing.T) {
	t.Setenv("KOMMO_BASE_URL", "")
	t.Setenv("KOMMO_API_TOKEN", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--email", "qa@example.com"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KOMMO_API_TOKEN")
}

func TestRootCmdFlagDefaults(t *testing.T) {
	cmd := newRootCmd()

	tools, err := cmd.Flags().GetStringSlice("tools")
	require.NoError(t, err)
	assert.Equal(t, []string{"Slack", "Asana", "Harvest"}, tools)
}
