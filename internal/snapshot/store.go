package snapshot

import (
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"

	"docdelta/internal/codebase"
	"docdelta/internal/errors"
	"docdelta/internal/revision"
	"docdelta/internal/slogutil"
)

// FileSuffix ends every cache file name.
const FileSuffix = ".snap.zst"

// maxLabelLen bounds the readable part of a cache file name.
const maxLabelLen = 40

// Store reads and writes cached snapshots in one directory.
type Store struct {
	dir       string
	namespace string
	memo      *lru.Cache[string, memoEntry]
	logger    *slog.Logger
	now       func() time.Time
}

// memoEntry holds decompressed envelope JSON for an unchanged file.
type memoEntry struct {
	modTime time.Time
	size    int64
	raw     []byte
}

// NewStore creates a store rooted at dir. memoEntries bounds the
// in-process memo of decompressed files; 0 disables it.
func NewStore(dir string, memoEntries int, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	s := &Store{dir: dir, logger: logger, now: time.Now}

	if memoEntries > 0 {
		memo, err := lru.New[string, memoEntry](memoEntries)
		if err != nil {
			return nil, err
		}
		s.memo = memo
	}
	return s, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// SetNamespace mixes ns into every file name. Snapshots produced under
// different parser or grading settings then never share a file.
func (s *Store) SetNamespace(ns string) {
	s.namespace = ns
}

// Filename returns the cache file path for rev. Equal revisions map to
// equal paths and distinct revisions to distinct paths. The live
// working tree has no cache file.
func (s *Store) Filename(rev revision.Revision) (string, error) {
	key, ok := rev.CacheKey()
	if !ok {
		return "", errors.New(errors.UsageError, "the live working tree is never cached", nil, nil)
	}

	sum, err := blake2b.New(8, nil)
	if err != nil {
		return "", err
	}
	if s.namespace != "" {
		sum.Write([]byte(s.namespace))
		sum.Write([]byte{0})
	}
	sum.Write([]byte(key))

	name := fmt.Sprintf("%s-%s%s", sanitize(key), hex.EncodeToString(sum.Sum(nil)), FileSuffix)
	return filepath.Join(s.dir, name), nil
}

// sanitize keeps a readable, filesystem-safe prefix of a revision id.
func sanitize(id string) string {
	var b strings.Builder
	for _, r := range id {
		if b.Len() >= maxLabelLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Load reads a snapshot. A missing file yields an error matching
// os.ErrNotExist; a file that cannot be decoded yields CACHE_CORRUPT.
// Every call returns a new snapshot instance.
func (s *Store) Load(path string) (*codebase.Snapshot, error) {
	env, err := s.loadEnvelope(path)
	if err != nil {
		return nil, err
	}

	snap, err := codebase.NewSnapshot(env.Objects)
	if err != nil {
		return nil, corrupt(path, err)
	}
	return snap, nil
}

func (s *Store) loadEnvelope(path string) (*envelope, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	raw, ok := s.memoized(path, info)
	if !ok {
		data, err := os.ReadFile(path)
		if err != nil {
			if stderrors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load snapshot: %w", err)
			}
			return nil, corrupt(path, err)
		}
		raw, err = decompress(data)
		if err != nil {
			return nil, corrupt(path, err)
		}
		if s.memo != nil {
			s.memo.Add(path, memoEntry{modTime: info.ModTime(), size: info.Size(), raw: raw})
		}
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		if s.memo != nil {
			s.memo.Remove(path)
		}
		return nil, corrupt(path, err)
	}
	return env, nil
}

func (s *Store) memoized(path string, info os.FileInfo) ([]byte, bool) {
	if s.memo == nil {
		return nil, false
	}
	e, ok := s.memo.Get(path)
	if !ok || !e.modTime.Equal(info.ModTime()) || e.size != info.Size() {
		return nil, false
	}
	return e.raw, true
}

func corrupt(path string, cause error) error {
	return errors.New(errors.CacheCorrupt, "cached snapshot cannot be decoded", cause, nil).
		WithDetails(map[string]string{"path": path})
}

// Save writes snap to path and records rev in the file so List can name
// it. The file is written to a temporary name in the same directory and
// renamed into place, so readers never observe a partial file.
// Concurrent writers of the same path: the last rename wins.
func (s *Store) Save(snap *codebase.Snapshot, path string, rev revision.Revision) error {
	if snap == nil {
		return errors.New(errors.UsageError, "cannot save a nil snapshot", nil, nil)
	}
	if rev.IsLive() {
		return errors.New(errors.UsageError, "the live working tree is never cached", nil, nil)
	}

	data, err := encode(snap, rev.ID(), s.now())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}

	if s.memo != nil {
		s.memo.Remove(path)
	}
	s.logger.Debug("Saved snapshot", "path", path, "objects", snap.Len(), "bytes", len(data))
	return nil
}

// Entry describes one cache file.
type Entry struct {
	Path      string    `json:"path" yaml:"path"`
	Revision  string    `json:"revision" yaml:"revision"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Objects   int       `json:"objects" yaml:"objects"`
	Bytes     int64     `json:"bytes" yaml:"bytes"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// List describes every cache file, oldest first. Files that fail to
// decode are listed with Error set.
func (s *Store) List() ([]Entry, error) {
	paths, err := s.files()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		e := Entry{Path: path}
		if info, err := os.Stat(path); err == nil {
			e.Bytes = info.Size()
		}
		if env, err := s.loadEnvelope(path); err != nil {
			e.Error = err.Error()
		} else {
			e.Revision = env.Revision
			e.CreatedAt = env.CreatedAt
			e.Objects = len(env.Objects)
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// Clear removes every cache file and returns how many were removed.
func (s *Store) Clear() (int, error) {
	paths, err := s.files()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !stderrors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed++
	}
	if s.memo != nil {
		s.memo.Purge()
	}
	return removed, nil
}

func (s *Store) files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), FileSuffix) && !strings.HasPrefix(e.Name(), ".") {
			paths = append(paths, filepath.Join(s.dir, e.Name()))
		}
	}
	return paths, nil
}
