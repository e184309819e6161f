// Package source discovers and parses Claude Code JSONL session files
// into token usage entries.
package source

import (
	"bufio"
	"encoding/json"
	"os"
	"time"
)

// ParseResult holds the output of parsing a single JSONL file.
type ParseResult struct {
	Entries     []UsageEntry
	ParseErrors int
	Err         error
}

// ParseFile reads a JSONL session file and extracts deduplicated token
// usage entries. Streaming retries mean a message ID can appear on several
// lines; the last occurrence carries the final billed usage, so it wins.
//
// Lines that are not assistant messages with usage data are skipped, as
// are lines with malformed timestamps. Malformed JSON is counted but never
// aborts the file.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	seen := make(map[string]int) // message ID → index in entries
	var entries []UsageEntry
	parseErrors := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 2*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()

		var entry RawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			parseErrors++
			continue
		}
		if entry.Type != "assistant" || entry.Message == nil || entry.Message.Usage == nil {
			continue
		}
		if entry.Message.ID == "" || entry.Timestamp == "" {
			continue
		}

		ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
		if err != nil {
			continue
		}

		ue := UsageEntry{
			MessageID: entry.Message.ID,
			Timestamp: ts.UTC(),
			Tokens:    entry.Message.Usage.Total(),
		}

		if idx, ok := seen[ue.MessageID]; ok {
			entries[idx] = ue
		} else {
			seen[ue.MessageID] = len(entries)
			entries = append(entries, ue)
		}
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}

	return ParseResult{Entries: entries, ParseErrors: parseErrors}
}
