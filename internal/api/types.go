package api

// StatusResponse from GET /api/v1/server/status
type StatusResponse struct {
	State         string `json:"state"` // "running", "stopped", "starting", "stopping"
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Players       int    `json:"players"`
	MaxPlayers    int    `json:"max_players"`
}

// LogFilesResponse from GET /api/v1/logs/files
type LogFilesResponse struct {
	Files []LogFile `json:"files"`
}

// LogFile describes one tailable server log file.
type LogFile struct {
	Name       string `json:"name"`
	SizeBytes  int64  `json:"size_bytes"`
	ModifiedAt string `json:"modified_at"` // ISO 8601
}

// StreamTokenResponse from POST /api/v1/logs/ws-token
type StreamTokenResponse struct {
	Token            string `json:"token"`
	ExpiresAt        string `json:"expires_at"` // ISO 8601
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}
