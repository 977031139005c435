package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/ledgercast/internal/source"
	"github.com/theirongolddev/ledgercast/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache discovers ledgers, diffs them against the cache by mtime and
// size, parses only changed files, and returns the combined record set. A
// change in user ID or keyword table invalidates every cached file.
func LoadWithCache(dataDir string, cache *store.Cache, opts LoadOptions, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	ledgers, plan := source.SplitPlan(files)
	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(ledgers)}}
	if err := loadPlan(&result.LoadResult, plan, opts); err != nil {
		return nil, err
	}

	log := opts.logger()
	fp := opts.fingerprint()
	stored, err := cache.ParseFingerprint()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	if stored != fp {
		if stored != "" {
			log.WithField("user_id", opts.UserID).Info("parse options changed, clearing record cache")
		}
		if err := cache.Reset(fp); err != nil {
			return nil, fmt.Errorf("resetting cache: %w", err)
		}
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var toReparse []source.DiscoveredFile
	var unchanged []string
	present := make(map[string]struct{}, len(ledgers))

	for _, f := range ledgers {
		present[f.Path] = struct{}{}
		info, err := os.Stat(f.Path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f.Rel, err)
		}

		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged = append(unchanged, f.Path)
		} else {
			toReparse = append(toReparse, f)
		}
	}

	for path := range tracked {
		if _, ok := present[path]; !ok {
			if err := cache.DeleteFile(path); err != nil {
				log.WithError(err).WithField("file", path).Warn("pruning cache entry")
			}
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	if len(unchanged) > 0 {
		cached, err := cache.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("loading cached records: %w", err)
		}
		for _, p := range unchanged {
			result.Transactions = append(result.Transactions, cached[p]...)
			result.ParsedFiles++
		}
	}

	for i, pr := range parseAll(toReparse, opts.parseOptions(), progressFn, result.CacheHits, result.TotalFiles) {
		if pr.Err != nil {
			return nil, fmt.Errorf("parsing %s: %w", pr.File.Rel, pr.Err)
		}
		result.ParsedFiles++
		result.Transactions = append(result.Transactions, pr.Records...)

		info, err := os.Stat(toReparse[i].Path)
		if err != nil {
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		if err := cache.SaveFile(toReparse[i].Path, pr.Records, fi); err != nil {
			log.WithError(err).WithField("file", pr.File.Rel).Warn("caching parsed ledger")
		}
	}

	SortRecords(result.Transactions)
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "ledgercast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "ledgercast")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "records.db")
}
