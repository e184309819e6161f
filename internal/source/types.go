package source

import "time"

// RawEntry represents a single line in a Claude Code JSONL session file.
// Only the fields needed for token accounting are decoded.
type RawEntry struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	Message   *RawMessage `json:"message,omitempty"`
}

// RawMessage represents the assistant's message envelope.
type RawMessage struct {
	ID    string    `json:"id"`
	Role  string    `json:"role"`
	Model string    `json:"model"`
	Usage *RawUsage `json:"usage,omitempty"`
}

// RawUsage holds token counts from the API response.
type RawUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

// Total returns all billed tokens for the message.
func (u RawUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens
}

// UsageEntry is one deduplicated API response with its token count.
// Entries are the raw material usage blocks are assembled from.
type UsageEntry struct {
	MessageID string
	Timestamp time.Time
	Tokens    int64
}

// DiscoveredFile represents a JSONL file found during directory scanning.
type DiscoveredFile struct {
	Path      string
	Project   string // raw project directory name
	SessionID string // extracted from filename
}
