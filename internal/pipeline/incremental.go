package pipeline

import (
	"fmt"
	"os"

	"github.com/GiGiDKR/tokenwatch/internal/source"
	"github.com/GiGiDKR/tokenwatch/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache discovers files, diffs them against the cache by mtime and
// size, reparses only what changed, and returns the combined entry set
// from the cache. Files that disappeared since the last run are evicted.
func LoadWithCache(claudeDir string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(claudeDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", claudeDir, err)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{TotalFiles: len(files)},
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache tracker: %w", err)
	}

	// Evict tracked files that no longer exist on disk.
	onDisk := make(map[string]struct{}, len(files))
	for _, f := range files {
		onDisk[f.Path] = struct{}{}
	}
	for path := range tracked {
		if _, ok := onDisk[path]; !ok {
			if err := cache.DeleteFile(path); err != nil {
				return nil, fmt.Errorf("evicting %s: %w", path, err)
			}
		}
	}

	// Partition into unchanged and changed files.
	type statted struct {
		file    source.DiscoveredFile
		mtimeNs int64
		size    int64
	}
	var changed []statted
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			result.FileErrors++
			continue
		}
		mtimeNs := info.ModTime().UnixNano()
		size := info.Size()

		if fi, ok := tracked[f.Path]; ok && fi.MtimeNs == mtimeNs && fi.SizeBytes == size {
			result.CacheHits++
			continue
		}
		changed = append(changed, statted{file: f, mtimeNs: mtimeNs, size: size})
	}

	if len(changed) > 0 {
		toParse := make([]source.DiscoveredFile, len(changed))
		for i, s := range changed {
			toParse[i] = s.file
		}

		results := parseAll(toParse, progressFn)
		for i, pr := range results {
			if pr.Err != nil {
				result.FileErrors++
				continue
			}
			result.Reparsed++
			result.ParseErrors += pr.ParseErrors
			if err := cache.SaveFileEntries(changed[i].file.Path, changed[i].mtimeNs, changed[i].size, pr.Entries); err != nil {
				return nil, fmt.Errorf("caching %s: %w", changed[i].file.Path, err)
			}
		}
	}

	entries, err := cache.LoadAllEntries()
	if err != nil {
		return nil, fmt.Errorf("loading cached entries: %w", err)
	}
	result.Entries = entries
	result.ParsedFiles = result.CacheHits + result.Reparsed

	return result, nil
}
