package api

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Addr          string // listen address, host:port
	Source        string // name of the scanned bag, reported by /summary
	EnableMetrics bool   // serve /metrics
}

// ConnectionInfo describes the index of one connection
type ConnectionInfo struct {
	Conn    uint32 `json:"conn"`
	Entries int    `json:"entries"`
}

// EntryResponse is one index entry
type EntryResponse struct {
	Time     uint64 `json:"time"`
	Offset   uint32 `json:"offset"`
	ChunkPos int    `json:"chunk_pos"`
}

// SummaryResponse describes the scanned bag
type SummaryResponse struct {
	Source      string         `json:"source"`
	ScanID      string         `json:"scan_id"`
	Records     int            `json:"records"`
	Bytes       int            `json:"bytes"`
	ByOp        map[string]int `json:"by_op"`
	Skipped     int            `json:"skipped"`
	Connections int            `json:"connections"`
	Entries     int            `json:"entries"`
}
