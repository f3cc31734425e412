package logging

// LogEntry represents a structured log record.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Recommendation-specific fields
	CampaignID string // The campaign a record belongs to, if any
	Latency    int64  // Operation duration in milliseconds

	// General structured data
	Fields map[string]interface{}
}
