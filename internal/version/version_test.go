package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestString(t *testing.T) {
	assert.Contains(t, String(), ApplicationName)
	assert.Contains(t, String(), Version)
}

func TestShort(t *testing.T) {
	assert.Contains(t, Short(), ApplicationName)
}

func TestJSON(t *testing.T) {
	var decoded Info
	require.NoError(t, json.Unmarshal([]byte(JSON()), &decoded))
	assert.Equal(t, GetInfo(), decoded)
}
