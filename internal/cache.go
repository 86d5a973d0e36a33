package internal

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const cacheFileExt = ".json"

// CacheManager stores summaries on disk, one file per request digest.
// Entries are never invalidated or evicted.
type CacheManager struct {
	fs       afero.Fs
	cacheDir string
}

// CacheEntry is the persisted value of a cache file
type CacheEntry struct {
	Summary string `json:"summary" yaml:"summary"`
}

// CacheIndexEntry describes one cache file
type CacheIndexEntry struct {
	Key     string
	Path    string
	Size    int64
	ModTime time.Time
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string) *CacheManager {
	return NewCacheManagerWithFs(afero.NewOsFs(), cacheDir)
}

// NewCacheManagerWithFs creates a cache manager on top of fs
func NewCacheManagerWithFs(fs afero.Fs, cacheDir string) *CacheManager {
	return &CacheManager{
		fs:       fs,
		cacheDir: cacheDir,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	return cm.fs.MkdirAll(cm.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetEntryPath returns the path to the cache file for key
func (cm *CacheManager) GetEntryPath(key string) string {
	return filepath.Join(cm.cacheDir, key+cacheFileExt)
}

// CacheKey computes the digest of a request: the MD5 of its canonical JSON
// encoding (sorted object keys at every depth, compact separators).
func CacheKey(v interface{}) (string, error) {
	data, err := CanonicalJSON(v)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize request: %w", err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// CanonicalJSON encodes v with object keys sorted at every depth. Two values
// that differ only in key order produce identical bytes.
func CanonicalJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	// Round-trip through interface{} so structs become maps, which
	// encoding/json always writes in sorted key order.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Load returns the entry stored under key. A missing entry is not an error.
func (cm *CacheManager) Load(key string) (*CacheEntry, bool, error) {
	data, err := afero.ReadFile(cm.fs, cm.GetEntryPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &CacheError{Key: key, Op: "read", Err: err}
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, &CacheError{Key: key, Op: "parse", Err: err}
	}

	return &entry, true, nil
}

// Save writes entry under key as pretty-printed JSON. The file is written
// to a temporary name first and renamed into place.
func (cm *CacheManager) Save(key string, entry *CacheEntry) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return &CacheError{Key: key, Op: "write", Err: err}
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return &CacheError{Key: key, Op: "write", Err: fmt.Errorf("failed to marshal entry: %w", err)}
	}

	tmp, err := afero.TempFile(cm.fs, cm.cacheDir, key+".*.tmp")
	if err != nil {
		return &CacheError{Key: key, Op: "write", Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = cm.fs.Remove(tmpPath)
		return &CacheError{Key: key, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = cm.fs.Remove(tmpPath)
		return &CacheError{Key: key, Op: "write", Err: err}
	}

	if err := cm.fs.Rename(tmpPath, cm.GetEntryPath(key)); err != nil {
		_ = cm.fs.Remove(tmpPath)
		return &CacheError{Key: key, Op: "write", Err: err}
	}

	LogDebug("Cached summary under %s", key)
	return nil
}

// List returns every cache entry, newest first
func (cm *CacheManager) List() ([]CacheIndexEntry, error) {
	infos, err := afero.ReadDir(cm.fs, cm.cacheDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []CacheIndexEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	entries := make([]CacheIndexEntry, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || !strings.HasSuffix(name, cacheFileExt) {
			continue
		}
		entries = append(entries, CacheIndexEntry{
			Key:     strings.TrimSuffix(name, cacheFileExt),
			Path:    filepath.Join(cm.cacheDir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].ModTime.After(entries[j].ModTime)
	})

	return entries, nil
}
