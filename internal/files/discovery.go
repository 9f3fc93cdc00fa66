package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance rooted at basePath.
// Relative directories passed to its methods resolve against it.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindFilesByPattern finds files in dir matching a glob pattern, sorted
// newest first.
func (d *Discovery) FindFilesByPattern(dir, pattern string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	matches, err := filepath.Glob(filepath.Join(fullPath, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

// NewestDataset returns the most recently modified file in dir matching
// any of the patterns. Empty files are skipped: a zero-byte dataset can
// only produce an empty series.
func (d *Discovery) NewestDataset(dir string, patterns []string) (string, error) {
	var newest *FileInfo

	for _, pattern := range patterns {
		files, err := d.FindFilesByPattern(dir, pattern)
		if err != nil {
			return "", err
		}
		for i := range files {
			f := files[i]
			if f.Size == 0 {
				continue
			}
			if newest == nil || f.ModTime.After(newest.ModTime) {
				newest = &f
			}
		}
	}

	if newest == nil {
		return "", fmt.Errorf("no dataset matching %v in %s", patterns, dir)
	}
	return newest.Path, nil
}
