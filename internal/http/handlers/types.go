// Package handlers provides HTTP API handlers for convertd.
package handlers

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CPUInfo contains CPU load information.
type CPUInfo struct {
	Cores              int     `json:"cores"`
	Load1Min           float64 `json:"load_1min"`
	Load5Min           float64 `json:"load_5min"`
	Load15Min          float64 `json:"load_15min"`
	LoadPercentage1Min float64 `json:"load_percentage_1min"`
}

// MemoryInfo contains memory usage information.
type MemoryInfo struct {
	TotalMemoryMB     float64 `json:"total_memory_mb"`
	UsedMemoryMB      float64 `json:"used_memory_mb"`
	AvailableMemoryMB float64 `json:"available_memory_mb"`
}

// FFmpegHealth reports the detected ffmpeg binary state.
type FFmpegHealth struct {
	Status  string `json:"status"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the body of the health check endpoint.
type HealthResponse struct {
	Status        string       `json:"status"`
	Timestamp     string       `json:"timestamp"`
	Version       string       `json:"version"`
	Uptime        string       `json:"uptime"`
	UptimeSeconds float64      `json:"uptime_seconds"`
	CPUInfo       CPUInfo      `json:"cpu"`
	Memory        MemoryInfo   `json:"memory"`
	FFmpeg        FFmpegHealth `json:"ffmpeg"`
}
