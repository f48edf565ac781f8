package config

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ByteSize is a size value that supports human-readable parsing.
//
// Examples:
//   - "500MB" = 500 * 1024 * 1024 bytes
//   - "1.5 GB" = 1.5 * 1024^3 bytes
//   - "524288000" = 524288000 bytes (raw number still works)
//
// It implements encoding.TextUnmarshaler for Viper/YAML support and
// json.Unmarshaler for JSON configuration files.
type ByteSize int64

// Size constants using binary (1024) base.
const (
	kilobyte ByteSize = 1024
	megabyte          = 1024 * kilobyte
	gigabyte          = 1024 * megabyte
	terabyte          = 1024 * gigabyte
)

var unitMultipliers = map[string]ByteSize{
	"":    1,
	"b":   1,
	"k":   kilobyte,
	"kb":  kilobyte,
	"kib": kilobyte,
	"m":   megabyte,
	"mb":  megabyte,
	"mib": megabyte,
	"g":   gigabyte,
	"gb":  gigabyte,
	"gib": gigabyte,
	"t":   terabyte,
	"tb":  terabyte,
	"tib": terabyte,
}

// sizePattern matches a number (int or float) followed by an optional unit.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-z]*)\s*$`)

// ParseByteSize parses a human-readable byte size string.
func ParseByteSize(s string) (ByteSize, error) {
	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number %q: %w", matches[1], err)
	}

	multiplier, ok := unitMultipliers[strings.ToLower(matches[2])]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit %q", matches[2])
	}

	return ByteSize(value * float64(multiplier)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for YAML/Viper support.
func (b *ByteSize) UnmarshalText(text []byte) error {
	parsed, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Accepts either a string with
// units or a raw byte count.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*b = ByteSize(n)
		return nil
	}
	return b.UnmarshalText([]byte(s))
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Bytes returns the size in bytes as int64.
func (b ByteSize) Bytes() int64 {
	return int64(b)
}

// String returns a human-readable representation using the largest unit
// that divides the size evenly, falling back to one decimal place.
func (b ByteSize) String() string {
	if b == 0 {
		return "0B"
	}

	units := []struct {
		size ByteSize
		name string
	}{
		{terabyte, "TB"},
		{gigabyte, "GB"},
		{megabyte, "MB"},
		{kilobyte, "KB"},
	}

	for _, u := range units {
		if b >= u.size {
			if b%u.size == 0 {
				return fmt.Sprintf("%d%s", b/u.size, u.name)
			}
			return fmt.Sprintf("%.1f%s", float64(b)/float64(u.size), u.name)
		}
	}
	return fmt.Sprintf("%dB", int64(b))
}
