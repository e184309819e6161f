package source

import (
	"os"
	"path/filepath"
	"strings"
)

// ScanDir walks the Claude projects directory and discovers all JSONL
// session files, including subagent transcripts. Unreadable entries are
// skipped rather than failing the whole scan.
func ScanDir(claudeDir string) ([]DiscoveredFile, error) {
	projectsDir := filepath.Join(claudeDir, "projects")

	info, err := os.Stat(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(projectsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if filepath.Ext(name) != ".jsonl" {
			return nil
		}

		rel, _ := filepath.Rel(projectsDir, path)
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) < 2 {
			return nil
		}

		files = append(files, DiscoveredFile{
			Path:      path,
			Project:   parts[0],
			SessionID: strings.TrimSuffix(name, ".jsonl"),
		})
		return nil
	})

	return files, err
}
