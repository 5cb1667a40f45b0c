package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootFlagDefaults(t *testing.T) {
	assert.Equal(t, "", rootCmd.Flags().Lookup("record").DefValue)
	assert.Equal(t, "", rootCmd.Flags().Lookup("record-filter").DefValue)
	assert.Equal(t, "-1", rootCmd.Flags().Lookup("heartbeat-sys-id").DefValue)
	assert.Equal(t, "1", rootCmd.Flags().Lookup("heartbeat-comp-id").DefValue)
	assert.Equal(t, "false", rootCmd.Flags().Lookup("follow").DefValue)
	assert.Equal(t, "10", rootCmd.PersistentFlags().Lookup("refresh-rate").DefValue)
}

func TestRootRejectsExtraArgs(t *testing.T) {
	err := rootCmd.Args(rootCmd, []string{"udpin:0.0.0.0:14550", "extra"})
	assert.Error(t, err)
}

func TestReplayRequiresPath(t *testing.T) {
	require.NotNil(t, replayCmd.Args)
	assert.Error(t, replayCmd.Args(replayCmd, nil))
	assert.NoError(t, replayCmd.Args(replayCmd, []string{"flight.jsonl"}))
}

func TestExpandPath(t *testing.T) {
	assert.NotContains(t, expandPath("~/x/y"), "~")
}
