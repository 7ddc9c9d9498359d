package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// errLimitReached stops the walk once enough files were classified.
var errLimitReached = errors.New("classification limit reached")

// Engine walks a media tree, reconciles it against a reference set and
// removes what is no longer referenced.
type Engine struct {
	fs     afero.Fs
	logger *zap.Logger
	state  atomic.Int32
}

// NewEngine creates an engine operating on fs.
func NewEngine(fs afero.Fs, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{fs: fs, logger: logger}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// Scan enumerates the tree and checks every classified file against refs.
func (e *Engine) Scan(ctx context.Context, opts Options, refs *ReferenceSet, obs Observer) (*Plan, error) {
	en, err := e.Enumerate(ctx, opts)
	if err != nil {
		return nil, err
	}
	return e.Check(en, refs, opts, obs)
}

// Enumerate walks opts.Root and collects classified files, stopping after
// opts.Limit classified files. Files matching no enabled area are ignored and
// do not count against the limit. Cancellation stops the walk and returns
// what was collected so far.
//
// A relative root is resolved against the working directory so area
// patterns always see absolute directories.
func (e *Engine) Enumerate(ctx context.Context, opts Options) (*Enumeration, error) {
	e.setState(StateScanning)

	if opts.Root == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidRoot)
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	opts.Root = root

	info, err := e.fs.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, opts.Root)
	}

	areas, unknown := opts.areaTable().Resolve(opts.Include)
	en := &Enumeration{
		Root:  opts.Root,
		Areas: areas,
		Files: make([][]CandidateFile, len(areas)),
	}

	for _, name := range unknown {
		err := fmt.Errorf("%w: %s", ErrUnknownArea, name)
		e.logger.Warn("Skipping area without pattern", zap.String("area", name))
		en.Warnings = append(en.Warnings, err.Error())
	}

	if len(areas) == 0 {
		return en, nil
	}

	classified := 0
	visit := func(path string, info os.FileInfo) error {
		dir := filepath.ToSlash(filepath.Dir(path))
		idx := classifyIndex(dir, areas)
		if idx < 0 {
			return nil
		}

		rel := RelativePath(opts.Root, path)
		key, _ := ExtractKey(rel, areas[idx], opts.CaseInsensitive)
		en.Files[idx] = append(en.Files[idx], CandidateFile{
			Path:    path,
			RelPath: rel,
			Area:    areas[idx].Name,
			Size:    info.Size(),
			Key:     key,
		})

		classified++
		if opts.Limit > 0 && classified >= opts.Limit {
			return errLimitReached
		}
		return nil
	}

	warn := func(err error) {
		e.logger.Warn("Skipping unreadable entry", zap.Error(err))
		en.Warnings = append(en.Warnings, err.Error())
	}

	err = e.walk(ctx, opts.Root, []os.FileInfo{info}, visit, warn)
	switch {
	case err == nil, errors.Is(err, errLimitReached):
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		en.Interrupted = true
		e.logger.Warn("Scan interrupted", zap.Int("classified", classified))
	default:
		return nil, err
	}

	return en, nil
}

// walk visits every non-directory entry below dir. Symbolic links are
// followed; a link back to a directory on the current path is skipped.
func (e *Engine) walk(ctx context.Context, dir string, ancestors []os.FileInfo, visit func(string, os.FileInfo) error, warn func(error)) error {
	entries, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		warn(&TransientFileError{Path: dir, Err: err})
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}

		path := filepath.Join(dir, name)
		info, err := e.fs.Stat(path)
		if err != nil {
			warn(&TransientFileError{Path: path, Err: err})
			continue
		}

		if info.IsDir() {
			if isAncestor(info, ancestors) {
				warn(&TransientFileError{Path: path, Err: errors.New("symbolic link loop")})
				continue
			}
			chain := append(ancestors[:len(ancestors):len(ancestors)], info)
			if err := e.walk(ctx, path, chain, visit, warn); err != nil {
				return err
			}
			continue
		}

		if err := visit(path, info); err != nil {
			return err
		}
	}
	return nil
}

func isAncestor(info os.FileInfo, ancestors []os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(a, info) {
			return true
		}
	}
	return false
}

// Check runs the membership check over an enumeration. Files are processed
// area by area in classification order, then in walk order. Every file
// updates the totals exactly once; files with a key missing from refs are
// appended to the removal list.
func (e *Engine) Check(en *Enumeration, refs *ReferenceSet, opts Options, obs Observer) (*Plan, error) {
	if refs == nil {
		refs = NewReferenceSet(nil, opts.CaseInsensitive)
	}
	if refs.CaseInsensitive() != opts.CaseInsensitive {
		return nil, ErrFoldMismatch
	}
	if obs == nil {
		obs = NopObserver
	}

	plan := &Plan{
		Root:        en.Root,
		Areas:       make([]AreaStatistics, len(en.Areas)),
		References:  refs.Len(),
		Warnings:    append([]string(nil), en.Warnings...),
		Interrupted: en.Interrupted,
	}

	total := en.Len()
	current := 0
	for i, area := range en.Areas {
		plan.Areas[i].Area = area.Name
		for _, f := range en.Files[i] {
			current++

			tagged := f.Key != "" && !refs.Contains(f.Key)
			if tagged {
				plan.Removals = append(plan.Removals, f)
			}
			plan.Stats.record(f.Size, tagged)
			plan.Areas[i].record(f.Size, tagged)

			obs.OnProgress(Event{
				Phase:        PhaseScan,
				Current:      current,
				Total:        total,
				Path:         f.Path,
				Key:          f.Key,
				Size:         f.Size,
				Tagged:       tagged,
				RemovedFiles: plan.Stats.RemovedFiles,
				RemovedBytes: plan.Stats.RemovedBytes,
			})
		}
	}

	e.logger.Debug("Scan checked",
		zap.Int("total_files", plan.Stats.TotalFiles),
		zap.Int("removed_files", plan.Stats.RemovedFiles),
		zap.Int("references", plan.References),
	)

	if opts.DryRun {
		e.setState(StateReported)
	} else {
		e.setState(StateAwaitingConfirmation)
	}
	return plan, nil
}
