package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input string
		want  ByteSize
	}{
		{"0", 0},
		{"1024", 1024},
		{"1KB", 1024},
		{"1kb", 1024},
		{"1KiB", 1024},
		{"500MB", 500 * 1024 * 1024},
		{"1.5GB", ByteSize(1.5 * 1024 * 1024 * 1024)},
		{"2 TB", 2 * 1024 * 1024 * 1024 * 1024},
		{" 10 mb ", 10 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseByteSize_Invalid(t *testing.T) {
	for _, input := range []string{"", "MB", "-5MB", "10XB", "ten megabytes"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseByteSize(input)
			assert.Error(t, err)
		})
	}
}

func TestByteSize_UnmarshalText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("500MB")))
	assert.Equal(t, int64(500*1024*1024), b.Bytes())
}

func TestByteSize_UnmarshalJSON(t *testing.T) {
	var fromString ByteSize
	require.NoError(t, fromString.UnmarshalJSON([]byte(`"1GB"`)))
	assert.Equal(t, ByteSize(1024*1024*1024), fromString)

	var fromNumber ByteSize
	require.NoError(t, fromNumber.UnmarshalJSON([]byte(`524288000`)))
	assert.Equal(t, ByteSize(524288000), fromNumber)

	var invalid ByteSize
	assert.Error(t, invalid.UnmarshalJSON([]byte(`true`)))
}

func TestByteSize_String(t *testing.T) {
	assert.Equal(t, "0B", ByteSize(0).String())
	assert.Equal(t, "512B", ByteSize(512).String())
	assert.Equal(t, "1KB", ByteSize(1024).String())
	assert.Equal(t, "500MB", ByteSize(500*1024*1024).String())
	assert.Equal(t, "1.5GB", ByteSize(1.5*1024*1024*1024).String())
}
