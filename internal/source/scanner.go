package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks the ledger data directory and discovers every file it knows how to parse.
// Hidden files and directories are skipped. Results are sorted by path.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dataDir)
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

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != dataDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		format, ok := detectFormat(name)
		if !ok {
			return nil
		}
		rel, _ := filepath.Rel(dataDir, path)
		files = append(files, DiscoveredFile{Path: path, Rel: filepath.ToSlash(rel), Format: format})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func detectFormat(name string) (Format, bool) {
	lower := strings.ToLower(name)
	switch {
	case lower == "plan.yaml" || lower == "plan.yml":
		return FormatPlan, true
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV, true
	case strings.HasSuffix(lower, ".jsonl"):
		return FormatJSONL, true
	case strings.HasSuffix(lower, ".xml"):
		return FormatCAMT, true
	}
	return 0, false
}

// SplitPlan separates the plan file (if any) from transaction ledgers.
// When several plan files exist the first one by path wins.
func SplitPlan(files []DiscoveredFile) (ledgers []DiscoveredFile, plan *DiscoveredFile) {
	for i := range files {
		if files[i].Format == FormatPlan {
			if plan == nil {
				plan = &files[i]
			}
			continue
		}
		ledgers = append(ledgers, files[i])
	}
	return ledgers, plan
}
