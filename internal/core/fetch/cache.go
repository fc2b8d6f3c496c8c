package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gosimple/slug"
	"github.com/samber/lo"
)

const (
	DefaultMaxAge = 24 * time.Hour
	cacheFileExt  = ".yaml"
	maxSlugLength = 80
)

type Status int

const (
	Miss Status = iota
	Hit
	Expired
)

func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Expired:
		return "expired"
	default:
		return "miss"
	}
}

// CacheSettings configure the on-disk cache. BaseDir is required when
// UseCache is set.
type CacheSettings struct {
	BaseDir       string
	MaxAge        time.Duration
	UseCache      bool
	StaleFallback bool
}

// CacheEntry is one cached remote document.
type CacheEntry struct {
	URL          string
	Path         string
	Data         []byte
	LastModified time.Time
}

type Cache struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

func NewCache(dir string, maxAge time.Duration) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache directory must not be empty")
	}
	if maxAge <= 0 {
		return nil, ErrUnexpectedTTL
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, maxAge: maxAge, now: time.Now}, nil
}

func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) pathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	name := slug.Make(url)
	if len(name) > maxSlugLength {
		name = name[:maxSlugLength]
	}
	return filepath.Join(c.dir, name+"-"+hex.EncodeToString(sum[:6])+cacheFileExt)
}

// Retrieve looks up url. The returned entry carries data for Hit and Expired.
func (c *Cache) Retrieve(url string) (Status, CacheEntry, error) {
	path := c.pathFor(url)
	entry := CacheEntry{URL: url, Path: path}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Miss, entry, nil
	}
	if err != nil {
		return Miss, entry, fmt.Errorf("failed to stat cache file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Miss, entry, fmt.Errorf("failed to read cache file: %w", err)
	}
	entry.Data = data
	entry.LastModified = info.ModTime()

	if c.now().Sub(info.ModTime()) > c.maxAge {
		return Expired, entry, nil
	}
	return Hit, entry, nil
}

// Store writes data for url, replacing any previous entry atomically.
func (c *Cache) Store(url string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Rename(tmpName, c.pathFor(url)); err != nil {
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return nil
}

// List returns cached files sorted by path.
func (c *Cache) List() ([]CacheEntry, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	entries := lo.FilterMap(dirEntries, func(e os.DirEntry, _ int) (CacheEntry, bool) {
		if e.IsDir() || filepath.Ext(e.Name()) != cacheFileExt {
			return CacheEntry{}, false
		}
		info, err := e.Info()
		if err != nil {
			return CacheEntry{}, false
		}
		return CacheEntry{Path: filepath.Join(c.dir, e.Name()), LastModified: info.ModTime()}, true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Purge removes every cached file and returns how many were deleted.
func (c *Cache) Purge() (int, error) {
	entries, err := c.List()
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if err := os.Remove(entry.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("failed to remove %s: %w", entry.Path, err)
		}
	}
	return len(entries), nil
}
