package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// BinaryInfo contains information about the discovered FFmpeg installation.
type BinaryInfo struct {
	Path         string `json:"path"`
	Version      string `json:"version"`
	MajorVersion int    `json:"major_version"`
	MinorVersion int    `json:"minor_version"`
}

// Detector handles discovery and caching of the FFmpeg binary.
type Detector struct {
	mu           sync.RWMutex
	configPath   string
	info         *BinaryInfo
	lastDetected time.Time
	cacheTTL     time.Duration
}

// NewDetector creates a new binary detector. configPath, when non-empty,
// takes precedence over environment and PATH lookup.
func NewDetector(configPath string) *Detector {
	return &Detector{
		configPath: configPath,
		cacheTTL:   5 * time.Minute,
	}
}

// WithCacheTTL sets the cache TTL for binary detection.
func (d *Detector) WithCacheTTL(ttl time.Duration) *Detector {
	d.cacheTTL = ttl
	return d
}

// Detect locates the ffmpeg binary and probes its version. Results are
// cached for the configured TTL.
func (d *Detector) Detect(ctx context.Context) (*BinaryInfo, error) {
	d.mu.RLock()
	if d.info != nil && time.Since(d.lastDetected) < d.cacheTTL {
		info := d.info
		d.mu.RUnlock()
		return info, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.info != nil && time.Since(d.lastDetected) < d.cacheTTL {
		return d.info, nil
	}

	info, err := d.detect(ctx)
	if err != nil {
		return nil, err
	}

	d.info = info
	d.lastDetected = time.Now()
	return info, nil
}

// Clear clears the cached binary information.
func (d *Detector) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.info = nil
}

func (d *Detector) detect(ctx context.Context) (*BinaryInfo, error) {
	path, err := FindBinary(d.configPath)
	if err != nil {
		return nil, err
	}

	info := &BinaryInfo{Path: path}

	version, major, minor, err := probeVersion(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("getting ffmpeg version: %w", err)
	}
	info.Version = version
	info.MajorVersion = major
	info.MinorVersion = minor

	return info, nil
}

// FindBinary searches for the ffmpeg executable.
// Search order: explicit configured path -> CONVERTD_FFMPEG_BINARY env var
// -> ./ffmpeg -> PATH.
func FindBinary(configPath string) (string, error) {
	if configPath != "" {
		if isExecutable(configPath) {
			return configPath, nil
		}
		return "", fmt.Errorf("configured ffmpeg path %q is not executable", configPath)
	}

	if envPath := os.Getenv("CONVERTD_FFMPEG_BINARY"); envPath != "" {
		if isExecutable(envPath) {
			return envPath, nil
		}
	}

	if isExecutable("./ffmpeg") {
		return "./ffmpeg", nil
	}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("ffmpeg binary not found")
}

// isExecutable checks if a file exists and is executable by the current user.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}

// versionPattern matches the leading version token of `ffmpeg -version`,
// e.g. "ffmpeg version 6.1.1-3ubuntu5".
var versionPattern = regexp.MustCompile(`ffmpeg version (\S+)`)

func probeVersion(ctx context.Context, path string) (version string, major, minor int, err error) {
	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return "", 0, 0, err
	}

	matches := versionPattern.FindStringSubmatch(string(out))
	if matches == nil {
		return "", 0, 0, fmt.Errorf("unrecognized version output")
	}
	version = matches[1]

	// Version strings can carry distro suffixes ("6.1.1-3ubuntu5") or be
	// plain git builds ("N-109983-g4b28fbor"); numeric parts are best effort.
	numeric := strings.SplitN(version, "-", 2)[0]
	parts := strings.Split(numeric, ".")
	if len(parts) > 0 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}

	return version, major, minor, nil
}
