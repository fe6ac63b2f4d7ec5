package materialize

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"docdelta/internal/backends/git"
	"docdelta/internal/codebase"
	"docdelta/internal/errors"
	"docdelta/internal/revision"
	"docdelta/internal/snapshot"
	"docdelta/internal/testutil"
)

// fakeVCS counts calls and records the directories it was handed.
type fakeVCS struct {
	mu       sync.Mutex
	clones   int
	verifies int
	resets   int
	dirs     []string

	cloneErr  error
	verifyErr error
	commit    string
}

func (f *fakeVCS) Clone(_ context.Context, src, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clones++
	f.dirs = append(f.dirs, dst)
	if f.cloneErr != nil {
		return f.cloneErr
	}
	return os.MkdirAll(dst, 0o755)
}

func (f *fakeVCS) VerifyRevision(_ context.Context, _, rev string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifies++
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	if f.commit != "" {
		return f.commit, nil
	}
	return rev, nil
}

func (f *fakeVCS) ResetHard(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

func (f *fakeVCS) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clones + f.verifies + f.resets
}

// countingParser returns a fixed object set and counts parses.
type countingParser struct {
	mu     sync.Mutex
	parses int
	dirs   []string
	err    error
}

func (p *countingParser) Parse(_ context.Context, dir string) (*codebase.Snapshot, error) {
	p.mu.Lock()
	p.parses++
	p.dirs = append(p.dirs, dir)
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return codebase.NewSnapshot([]*codebase.Object{
		{Fullname: "Foo", Kind: codebase.KindClass, Score: 50, Grade: codebase.GradeB},
		{Fullname: "Foo#bar", Kind: codebase.KindMethod, Score: 40, Grade: codebase.GradeC},
	})
}

type recorder struct {
	events []Event
}

func (r *recorder) RecordMaterialization(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return nil
}

func newFixture(t *testing.T) (*Materializer, *fakeVCS, *countingParser, *snapshot.Store) {
	t.Helper()
	store, err := snapshot.NewStore(filepath.Join(t.TempDir(), "cache"), 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	vcs := &fakeVCS{}
	parser := &countingParser{}
	return New(vcs, store, parser, nil), vcs, parser, store
}

func TestMaterialize_Live(t *testing.T) {
	m, vcs, parser, store := newFixture(t)
	rec := &recorder{}
	m.SetRecorder(rec)
	workDir := t.TempDir()

	for i := 0; i < 3; i++ {
		if _, err := m.Materialize(context.Background(), workDir, revision.Live()); err != nil {
			t.Fatalf("Materialize failed: %v", err)
		}
	}

	if parser.parses != 3 {
		t.Errorf("parses = %d, want 3", parser.parses)
	}
	if vcs.calls() != 0 {
		t.Errorf("live revision invoked git %d times", vcs.calls())
	}
	if entries, _ := store.List(); len(entries) != 0 {
		t.Errorf("live revision wrote the cache: %v", entries)
	}
	if got, _ := filepath.Abs(workDir); parser.dirs[0] != got {
		t.Errorf("parsed %s, want %s", parser.dirs[0], got)
	}
	if len(rec.events) != 3 || rec.events[0].Source != SourceLive || rec.events[0].CachePath != "" {
		t.Errorf("unexpected events %+v", rec.events)
	}
}

func TestMaterialize_WarmCache(t *testing.T) {
	m, vcs, parser, _ := newFixture(t)
	rev := revision.MustFixed("v1.0")
	ctx := context.Background()

	first, err := m.Resolve(ctx, t.TempDir(), rev)
	if err != nil {
		t.Fatalf("cold Resolve failed: %v", err)
	}
	if first.Event.Source != SourceClone {
		t.Errorf("cold source = %s", first.Event.Source)
	}
	if vcs.clones != 1 || vcs.verifies != 1 || vcs.resets != 1 || parser.parses != 1 {
		t.Fatalf("cold path: clones=%d verifies=%d resets=%d parses=%d",
			vcs.clones, vcs.verifies, vcs.resets, parser.parses)
	}

	gitCalls, parses := vcs.calls(), parser.parses
	second, err := m.Resolve(ctx, t.TempDir(), rev)
	if err != nil {
		t.Fatalf("warm Resolve failed: %v", err)
	}
	if vcs.calls() != gitCalls || parser.parses != parses {
		t.Errorf("warm cache did extra work: git %d->%d, parses %d->%d",
			gitCalls, vcs.calls(), parses, parser.parses)
	}
	if second.Event.Source != SourceCache {
		t.Errorf("warm source = %s", second.Event.Source)
	}
	if second.Snapshot.Generation() == first.Snapshot.Generation() {
		t.Error("cache hit must yield a distinct snapshot")
	}
	if !equalNames(first.Snapshot.Fullnames(), second.Snapshot.Fullnames()) {
		t.Error("cached snapshot differs from parsed one")
	}
}

func TestMaterialize_CloneLayout(t *testing.T) {
	m, vcs, parser, _ := newFixture(t)
	workDir := filepath.Join(t.TempDir(), "project")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Materialize(context.Background(), workDir, revision.MustFixed("abc")); err != nil {
		t.Fatal(err)
	}

	clone := vcs.dirs[0]
	if filepath.Base(clone) != "project" {
		t.Errorf("clone dir %s does not keep the working dir name", clone)
	}
	if parser.dirs[0] != clone {
		t.Errorf("parsed %s, want clone %s", parser.dirs[0], clone)
	}
	if _, err := os.Stat(filepath.Dir(clone)); !os.IsNotExist(err) {
		t.Errorf("temporary directory not removed: %v", err)
	}
}

func TestMaterialize_Failures(t *testing.T) {
	parseErr := stderrors.New("boom")

	tests := []struct {
		name  string
		setup func(*fakeVCS, *countingParser)
		check func(error) bool
	}{
		{
			name: "clone failed",
			setup: func(v *fakeVCS, _ *countingParser) {
				v.cloneErr = errors.New(errors.CloneFailed, "nope", nil, nil)
			},
			check: func(err error) bool { return errors.IsCode(err, errors.CloneFailed) },
		},
		{
			name: "revision not found",
			setup: func(v *fakeVCS, _ *countingParser) {
				v.verifyErr = errors.New(errors.RevisionNotFound, "nope", nil, nil)
			},
			check: func(err error) bool { return errors.IsCode(err, errors.RevisionNotFound) },
		},
		{
			name:  "parser error propagated unchanged",
			setup: func(_ *fakeVCS, p *countingParser) { p.err = parseErr },
			check: func(err error) bool { return err == parseErr },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, vcs, parser, store := newFixture(t)
			tt.setup(vcs, parser)

			_, err := m.Materialize(context.Background(), t.TempDir(), revision.MustFixed("v2"))
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if entries, _ := store.List(); len(entries) != 0 {
				t.Errorf("failed materialization wrote the cache: %v", entries)
			}
			for _, dir := range vcs.dirs {
				if _, err := os.Stat(filepath.Dir(dir)); !os.IsNotExist(err) {
					t.Errorf("temporary directory %s left behind", filepath.Dir(dir))
				}
			}
		})
	}
}

func TestMaterialize_CorruptCacheSurfaced(t *testing.T) {
	m, vcs, parser, store := newFixture(t)
	rev := revision.MustFixed("v1")

	path, err := store.Filename(rev)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = m.Materialize(context.Background(), t.TempDir(), rev)
	if !errors.IsCode(err, errors.CacheCorrupt) {
		t.Fatalf("expected CACHE_CORRUPT, got %v", err)
	}
	if vcs.calls() != 0 || parser.parses != 0 {
		t.Error("corrupt cache must not fall back to re-parsing")
	}

	m.SetRefresh(true)
	if _, err := m.Materialize(context.Background(), t.TempDir(), rev); err != nil {
		t.Fatalf("refresh did not rebuild: %v", err)
	}
	if _, err := store.Load(path); err != nil {
		t.Errorf("cache not rewritten by refresh: %v", err)
	}
}

// failingSaveCache wraps a store and fails every Save.
type failingSaveCache struct {
	*snapshot.Store
}

func (failingSaveCache) Save(*codebase.Snapshot, string, revision.Revision) error {
	return stderrors.New("disk full")
}

func TestMaterialize_SaveFailureReturned(t *testing.T) {
	store, err := snapshot.NewStore(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	m := New(&fakeVCS{}, failingSaveCache{store}, &countingParser{}, nil)

	_, err = m.Materialize(context.Background(), t.TempDir(), revision.MustFixed("v1"))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected save failure, got %v", err)
	}
}

func TestMaterialize_CommitAlias(t *testing.T) {
	m, vcs, parser, _ := newFixture(t)
	vcs.commit = "0123456789abcdef0123456789abcdef01234567"
	ctx := context.Background()

	if _, err := m.Materialize(ctx, t.TempDir(), revision.MustFixed("main")); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Materialize(ctx, t.TempDir(), revision.MustFixed(vcs.commit)); err != nil {
		t.Fatal(err)
	}
	if parser.parses != 1 {
		t.Errorf("commit hash of a cached branch was parsed again (%d parses)", parser.parses)
	}
}

func TestMaterialize_CacheEntriesNameTheirRevision(t *testing.T) {
	m, vcs, _, store := newFixture(t)
	vcs.commit = "89abcdef0123456789abcdef0123456789abcdef"

	if _, err := m.Materialize(context.Background(), t.TempDir(), revision.MustFixed("v1.2.0")); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	var revs []string
	for _, e := range entries {
		if e.Error != "" {
			t.Errorf("unreadable cache entry %s: %s", e.Path, e.Error)
		}
		if e.Objects != 2 {
			t.Errorf("%s: %d objects, want 2", e.Path, e.Objects)
		}
		revs = append(revs, e.Revision)
	}
	sort.Strings(revs)

	want := []string{vcs.commit, "v1.2.0"}
	if strings.Join(revs, ",") != strings.Join(want, ",") {
		t.Errorf("cache entries name revisions %q, want %q", revs, want)
	}

	for _, rev := range want {
		path, _ := store.Filename(revision.MustFixed(rev))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("no cache file for %s: %v", rev, err)
		}
	}
}

// fileParser turns every *.txt file into an object whose score is the
// file's content, so tests can drive scores through git history.
var fileParser = codebase.ParserFunc(func(_ context.Context, dir string) (*codebase.Snapshot, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	var objs []*codebase.Object
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), ".txt")
		objs = append(objs, &codebase.Object{Fullname: name, Kind: codebase.KindMethod, Score: score})
	}
	return codebase.NewSnapshot(objs)
})

func TestMaterialize_RealGit(t *testing.T) {
	repo := testutil.NewGitRepo(t)
	repo.WriteFile("bar.txt", "40\n")
	repo.WriteFile("qux.txt", "10\n")
	first := repo.Commit("first")
	repo.WriteFile("bar.txt", "70\n")
	repo.Commit("second")
	repo.WriteFile("bar.txt", "99\n") // uncommitted

	store, err := snapshot.NewStore(filepath.Join(t.TempDir(), "cache"), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	m := New(git.NewAdapter(nil, nil), store, fileParser, nil)
	ctx := context.Background()

	tests := []struct {
		rev  revision.Revision
		want float64
	}{
		{revision.MustFixed(first), 40},
		{revision.MustFixed("HEAD"), 70},
		{revision.MustFixed("main"), 70},
		{revision.Live(), 99},
	}
	for _, tt := range tests {
		t.Run(tt.rev.String(), func(t *testing.T) {
			snap, err := m.Materialize(ctx, repo.Root, tt.rev)
			if err != nil {
				t.Fatalf("Materialize failed: %v", err)
			}
			bar, ok := snap.Find("bar")
			if !ok || bar.Score != tt.want {
				t.Errorf("bar = %+v, want score %v", bar, tt.want)
			}
		})
	}

	_, err = m.Materialize(ctx, repo.Root, revision.MustFixed("does-not-exist"))
	if !errors.IsCode(err, errors.RevisionNotFound) {
		t.Errorf("expected REVISION_NOT_FOUND, got %v", err)
	}

	_, err = m.Materialize(ctx, t.TempDir(), revision.MustFixed("HEAD"))
	if !errors.IsCode(err, errors.CloneFailed) {
		t.Errorf("expected CLONE_FAILED for a non-repository, got %v", err)
	}
}

func equalNames(a, b []string) bool {
	a = append([]string(nil), a...)
	b = append([]string(nil), b...)
	sort.Strings(a)
	sort.Strings(b)
	return strings.Join(a, ",") == strings.Join(b, ",")
}
