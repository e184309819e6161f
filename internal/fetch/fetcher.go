// Package fetch supplies usage snapshots to the evaluation loop. A source
// returning nil is the expected failure mode; the engine degrades to a
// no-data report instead of erroring.
package fetch

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/GiGiDKR/tokenwatch/internal/model"
	"github.com/GiGiDKR/tokenwatch/internal/pipeline"
	"github.com/GiGiDKR/tokenwatch/internal/source"
	"github.com/GiGiDKR/tokenwatch/internal/store"
)

// Source produces a fresh usage snapshot, or nil when no data is available.
type Source interface {
	Fetch(now time.Time) *model.UsageData
}

// FileSource loads usage data from the Claude data directory, optionally
// through the SQLite cache for incremental reparsing.
type FileSource struct {
	DataDir string
	Cache   *store.Cache // nil disables cache-assisted loading
	Logger  zerolog.Logger
}

// Fetch implements Source. Load failures are logged and reported as nil
// rather than propagated; a transient read problem should degrade the
// display, not kill the loop.
func (s *FileSource) Fetch(now time.Time) *model.UsageData {
	entries, err := s.loadEntries()
	if err != nil {
		s.Logger.Warn().Err(err).Str("data_dir", s.DataDir).Msg("usage data load failed")
		return nil
	}

	return &model.UsageData{
		Blocks:    source.BuildBlocks(entries, now),
		FetchedAt: now,
	}
}

func (s *FileSource) loadEntries() ([]source.UsageEntry, error) {
	if s.Cache != nil {
		cr, err := pipeline.LoadWithCache(s.DataDir, s.Cache, nil)
		if err == nil {
			return cr.Entries, nil
		}
		s.Logger.Warn().Err(err).Msg("cache-assisted load failed, falling back to full parse")
	}

	result, err := pipeline.Load(s.DataDir, nil)
	if err != nil {
		return nil, err
	}
	return result.Entries, nil
}
