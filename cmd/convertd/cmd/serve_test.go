package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrideFlags_UnsetLeavesConfigValue(t *testing.T) {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.Int("port", 0, "")
	fs.String("host", "", "")

	port := 9090
	host := "127.0.0.1"
	overrideInt(fs, "port", &port)
	overrideString(fs, "host", &host)

	assert.Equal(t, 9090, port)
	assert.Equal(t, "127.0.0.1", host)
}

func TestOverrideFlags_ExplicitValueWins(t *testing.T) {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.Int("port", 0, "")
	fs.String("host", "", "")
	require.NoError(t, fs.Parse([]string{"--port=7070", "--host=0.0.0.0"}))

	port := 9090
	host := "127.0.0.1"
	overrideInt(fs, "port", &port)
	overrideString(fs, "host", &host)

	assert.Equal(t, 7070, port)
	assert.Equal(t, "0.0.0.0", host)
}

func TestOverrideFlags_ExplicitZeroApplies(t *testing.T) {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.String("base-dir", "", "")
	require.NoError(t, fs.Parse([]string{"--base-dir="}))

	baseDir := "/data"
	overrideString(fs, "base-dir", &baseDir)

	assert.Empty(t, baseDir)
}
