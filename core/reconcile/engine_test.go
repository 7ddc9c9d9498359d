package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeTree creates files of the given sizes on fs.
func writeTree(t *testing.T, fs afero.Fs, files map[string]int) {
	t.Helper()
	for path, size := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, make([]byte, size), 0o644))
	}
}

// assertConsistent checks the invariants tying statistics to the removal list.
func assertConsistent(t *testing.T, plan *Plan) {
	t.Helper()
	assert.LessOrEqual(t, plan.Stats.RemovedFiles, plan.Stats.TotalFiles)
	assert.LessOrEqual(t, plan.Stats.RemovedBytes, plan.Stats.TotalBytes)
	assert.Equal(t, len(plan.Removals), plan.Stats.RemovedFiles)
	assert.Equal(t, plan.Removals.Bytes(), plan.Stats.RemovedBytes)

	var sum Statistics
	for _, a := range plan.Areas {
		sum.TotalFiles += a.TotalFiles
		sum.TotalBytes += a.TotalBytes
		sum.RemovedFiles += a.RemovedFiles
		sum.RemovedBytes += a.RemovedBytes
	}
	assert.Equal(t, plan.Stats, sum)
}

func dryRun(root string, include ...string) Options {
	return Options{Root: root, Include: include, DryRun: true}
}

func TestScan_TwoFileScenario(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]int{
		"/root/product/a/b/img1.jpg": 10,
		"/root/product/c/d/img2.jpg": 20,
	})

	engine := NewEngine(fs, zap.NewNop())
	refs := NewReferenceSet([]string{"/a/b/img1.jpg"}, false)

	plan, err := engine.Scan(context.Background(), dryRun("/root"), refs, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Stats.TotalFiles)
	assert.Equal(t, int64(30), plan.Stats.TotalBytes)
	assert.Equal(t, 1, plan.Stats.RemovedFiles)
	assert.Equal(t, int64(20), plan.Stats.RemovedBytes)
	assert.Equal(t, []string{"/root/product/c/d/img2.jpg"}, plan.Removals.Paths())
	assert.Equal(t, "/c/d/img2.jpg", plan.Removals[0].Key)
	assertConsistent(t, plan)
}

func TestScan_UnmatchedAreaExcluded(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := "/media/catalog/product"
	writeTree(t, fs, map[string]int{
		root + "/placeholder/x.jpg":          5,
		root + "/cache/abc123/a/b/photo.jpg": 7,
	})

	engine := NewEngine(fs, zap.NewNop())
	plan, err := engine.Scan(context.Background(), dryRun(root, AreaCache), NewReferenceSet(nil, false), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Stats.TotalFiles)
	assert.Equal(t, int64(7), plan.Stats.TotalBytes)
	assert.NotContains(t, plan.Removals.Paths(), root+"/placeholder/x.jpg")
	assertConsistent(t, plan)
}

func TestScan_DerivedKeyMatchesReference(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := "/media/catalog/product"
	writeTree(t, fs, map[string]int{
		root + "/a/b/photo.jpg":                            100,
		root + "/cache/f3e1c0a9/image/265x/a/b/photo.jpg":  10,
		root + "/cache/f3e1c0a9/image/265x/z/z/orphan.jpg": 12,
	})

	engine := NewEngine(fs, zap.NewNop())
	refs := NewReferenceSet([]string{"/a/b/photo.jpg"}, false)

	plan, err := engine.Scan(context.Background(), dryRun(root), refs, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, plan.Stats.TotalFiles)
	assert.Equal(t, []string{root + "/cache/f3e1c0a9/image/265x/z/z/orphan.jpg"}, plan.Removals.Paths())
	require.Len(t, plan.Areas, 2)
	assert.Equal(t, AreaProduct, plan.Areas[0].Area)
	assert.Equal(t, 1, plan.Areas[0].TotalFiles)
	assert.Equal(t, AreaCache, plan.Areas[1].Area)
	assert.Equal(t, 2, plan.Areas[1].TotalFiles)
	assertConsistent(t, plan)
}

func TestScan_EmptyReferenceSet(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := "/r"
	writeTree(t, fs, map[string]int{
		root + "/product/a/b/one.jpg":     1,
		root + "/product/cache/abc/x.jpg": 2, // no signature, counted but never tagged
	})

	engine := NewEngine(fs, zap.NewNop())
	plan, err := engine.Scan(context.Background(), dryRun(root), NewReferenceSet(nil, false), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Stats.TotalFiles)
	assert.Equal(t, int64(3), plan.Stats.TotalBytes)
	assert.Equal(t, []string{root + "/product/a/b/one.jpg"}, plan.Removals.Paths())
	assertConsistent(t, plan)
}

func TestScan_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]int{
		"/r/product/a/b/1.jpg":         1,
		"/r/product/a/c/2.jpg":         2,
		"/r/product/cache/h/d/e/3.jpg": 3,
		"/r/product/x/y/4.jpg":         4,
	})
	refs := NewReferenceSet([]string{"/a/c/2.jpg"}, false)
	engine := NewEngine(fs, zap.NewNop())

	first, err := engine.Scan(context.Background(), dryRun("/r"), refs, nil)
	require.NoError(t, err)
	second, err := engine.Scan(context.Background(), dryRun("/r"), refs, nil)
	require.NoError(t, err)

	a, b := first.Removals.Paths(), second.Removals.Paths()
	sort.Strings(a)
	sort.Strings(b)
	assert.Equal(t, a, b)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestScan_Limit(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := "/m/catalog/product"
	writeTree(t, fs, map[string]int{
		// Walked first, matches no area and must not count against the limit.
		root + "/_misc/readme.txt": 50,
		root + "/a/a/1.jpg":        1,
		root + "/a/b/2.jpg":        1,
		root + "/a/c/3.jpg":        1,
		root + "/a/d/4.jpg":        1,
		root + "/a/e/5.jpg":        1,
	})
	engine := NewEngine(fs, zap.NewNop())

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"Bounded", 3, 3},
		{"ExactlyAll", 5, 5},
		{"AboveAll", 10, 5},
		{"Zero", 0, 5},
		{"Negative", -1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := dryRun(root)
			opts.Limit = tt.limit

			plan, err := engine.Scan(context.Background(), opts, NewReferenceSet(nil, false), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.Stats.TotalFiles)
			assert.Equal(t, int64(tt.want), plan.Stats.TotalBytes)
			assertConsistent(t, plan)
		})
	}
}

func TestScan_CaseInsensitive(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]int{"/r/product/a/b/photo.jpg": 8})
	engine := NewEngine(fs, zap.NewNop())
	ids := []string{"/A/B/Photo.JPG"}

	t.Run("Enabled", func(t *testing.T) {
		opts := dryRun("/r")
		opts.CaseInsensitive = true

		plan, err := engine.Scan(context.Background(), opts, NewReferenceSet(ids, true), nil)
		require.NoError(t, err)
		assert.Empty(t, plan.Removals)
		assert.Equal(t, 1, plan.Stats.TotalFiles)
	})

	t.Run("Disabled", func(t *testing.T) {
		plan, err := engine.Scan(context.Background(), dryRun("/r"), NewReferenceSet(ids, false), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"/r/product/a/b/photo.jpg"}, plan.Removals.Paths())
	})

	t.Run("FoldMismatch", func(t *testing.T) {
		opts := dryRun("/r")
		opts.CaseInsensitive = true

		_, err := engine.Scan(context.Background(), opts, NewReferenceSet(ids, false), nil)
		assert.ErrorIs(t, err, ErrFoldMismatch)
	})
}

func TestScan_FirstMatchWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]int{"/r/product/x/cache/a/b/img.jpg": 1})
	engine := NewEngine(fs, zap.NewNop())

	tests := []struct {
		include []string
		want    string
	}{
		{[]string{AreaProduct, AreaCache}, AreaProduct},
		{[]string{AreaCache, AreaProduct}, AreaCache},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			plan, err := engine.Scan(context.Background(), dryRun("/r", tt.include...), NewReferenceSet(nil, false), nil)
			require.NoError(t, err)
			require.Len(t, plan.Removals, 1)
			assert.Equal(t, tt.want, plan.Removals[0].Area)
		})
	}
}

func TestScan_UnknownAreaSkipped(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]int{"/r/product/a/b/img.jpg": 1})
	engine := NewEngine(fs, zap.NewNop())

	plan, err := engine.Scan(context.Background(), dryRun("/r", "swatches", AreaProduct), NewReferenceSet(nil, false), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Stats.TotalFiles)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], ErrUnknownArea.Error())
	assert.Contains(t, plan.Warnings[0], "swatches")
}

func TestScan_InvalidRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]int{"/r/file.jpg": 1})
	engine := NewEngine(fs, zap.NewNop())

	_, err := engine.Scan(context.Background(), dryRun("/missing"), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRoot)

	_, err = engine.Scan(context.Background(), dryRun("/r/file.jpg"), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRoot)

	_, err = engine.Scan(context.Background(), dryRun(""), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestScan_RelativeRoot(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	abs := filepath.Join(cwd, "product")

	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]int{
		filepath.Join(abs, "a", "b", "img.jpg"):               2,
		filepath.Join(abs, "cache", "h", "c", "d", "img.jpg"): 3,
	})
	engine := NewEngine(fs, zap.NewNop())

	tests := []struct {
		root string
		want string
	}{
		{abs, abs},
		{"product", abs},
		{"./product", abs},
		{".", cwd},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			plan, err := engine.Scan(context.Background(), dryRun(tt.root), NewReferenceSet(nil, false), nil)
			require.NoError(t, err)

			assert.Equal(t, tt.want, plan.Root)
			assert.Equal(t, 2, plan.Stats.TotalFiles)
			assert.Equal(t, 1, plan.Areas[0].TotalFiles, "product image must be classified")
			assert.Equal(t, 1, plan.Areas[1].TotalFiles)
			for _, f := range plan.Removals {
				assert.True(t, filepath.IsAbs(f.Path), f.Path)
			}
			assertConsistent(t, plan)
		})
	}
}

func TestScan_TransientFileSkipped(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "product", "a", "b")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.jpg"), []byte("abcd"), 0o644))

	// A dangling link is listed by readdir but fails stat.
	dangling := filepath.Join(dir, "gone.jpg")
	if err := os.Symlink(filepath.Join(root, "nowhere.jpg"), dangling); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	engine := NewEngine(afero.NewOsFs(), zap.NewNop())
	plan, err := engine.Scan(context.Background(), dryRun(root), NewReferenceSet(nil, false), nil)
	require.NoError(t, err)

	assert.False(t, plan.Interrupted)
	assert.Equal(t, 1, plan.Stats.TotalFiles)
	assert.Equal(t, int64(4), plan.Stats.TotalBytes)
	require.Len(t, plan.Removals, 1)
	assert.Equal(t, "/a/b/ok.jpg", plan.Removals[0].Key)

	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "skipped "+dangling)
	assertConsistent(t, plan)
}

func TestScan_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]int{
		"/r/product/a/b/1.jpg": 1,
		"/r/product/a/c/2.jpg": 1,
	})
	engine := NewEngine(fs, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan, err := engine.Scan(ctx, dryRun("/r"), NewReferenceSet(nil, false), nil)
	require.NoError(t, err)
	assert.True(t, plan.Interrupted)
	assert.Equal(t, 0, plan.Stats.TotalFiles)
	assertConsistent(t, plan)
}

func TestScan_ProgressEvents(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]int{
		"/r/product/a/b/1.jpg": 3,
		"/r/product/a/c/2.jpg": 4,
		"/r/product/a/d/3.jpg": 5,
	})
	engine := NewEngine(fs, zap.NewNop())

	var events []Event
	obs := ObserverFunc(func(e Event) { events = append(events, e) })

	plan, err := engine.Scan(context.Background(), dryRun("/r"), NewReferenceSet([]string{"/a/c/2.jpg"}, false), obs)
	require.NoError(t, err)

	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, PhaseScan, e.Phase)
		assert.Equal(t, i+1, e.Current)
		assert.Equal(t, 3, e.Total)
	}
	last := events[len(events)-1]
	assert.Equal(t, plan.Stats.RemovedFiles, last.RemovedFiles)
	assert.Equal(t, plan.Stats.RemovedBytes, last.RemovedBytes)
	assert.False(t, events[1].Tagged)
}

func TestScan_State(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]int{"/r/product/a/b/1.jpg": 1})
	engine := NewEngine(fs, zap.NewNop())
	assert.Equal(t, StateIdle, engine.State())

	_, err := engine.Scan(context.Background(), dryRun("/r"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StateReported, engine.State())

	live := dryRun("/r")
	live.DryRun = false
	_, err = engine.Scan(context.Background(), live, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingConfirmation, engine.State())
}

func TestScan_FollowsSymlinks(t *testing.T) {
	tmp := t.TempDir()
	store := filepath.Join(tmp, "store")
	root := filepath.Join(tmp, "media")

	require.NoError(t, os.MkdirAll(filepath.Join(store, "x", "y"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store, "x", "y", "img.jpg"), []byte("abc"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "product"), 0o755))
	if err := os.Symlink(filepath.Join(store, "x"), filepath.Join(root, "product", "x")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	// Link back up the tree; must not recurse forever.
	require.NoError(t, os.Symlink(filepath.Join(root, "product"), filepath.Join(store, "x", "y", "loop")))

	engine := NewEngine(afero.NewOsFs(), zap.NewNop())
	plan, err := engine.Scan(context.Background(), dryRun(root), NewReferenceSet(nil, false), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Stats.TotalFiles)
	require.Len(t, plan.Removals, 1)
	assert.Equal(t, "/x/y/img.jpg", plan.Removals[0].Key)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "symbolic link loop")
}
