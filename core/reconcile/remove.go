package reconcile

import (
	"context"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Apply removes the files of plan. It is a no-op unless opts.DryRun is false
// and opts.Confirmed is true; both must be set explicitly by the caller.
func (e *Engine) Apply(ctx context.Context, plan *Plan, opts Options, obs Observer) *RemovalResult {
	if opts.DryRun || !opts.Confirmed || plan == nil {
		e.setState(StateReported)
		return &RemovalResult{}
	}
	return e.Remove(ctx, plan.Removals, obs)
}

// Remove deletes every file of list in order. A failed delete is recorded
// and the remaining files are still attempted. Cancellation stops before the
// next file; files not attempted are counted as skipped.
func (e *Engine) Remove(ctx context.Context, list RemovalList, obs Observer) *RemovalResult {
	if obs == nil {
		obs = NopObserver
	}
	e.setState(StateRemoving)
	defer e.setState(StateReported)

	result := &RemovalResult{}
	for i, f := range list {
		if ctx.Err() != nil {
			result.Skipped = len(list) - i
			e.logger.Warn("Removal interrupted", zap.Int("skipped", result.Skipped))
			break
		}

		err := e.fs.Remove(f.Path)
		if err != nil {
			derr := &DeletionError{Path: f.Path, Err: err}
			result.Failed = append(result.Failed, derr)
			e.logger.Warn("Failed to remove file", zap.String("path", f.Path), zap.Error(err))
		} else {
			result.Removed++
			result.RemovedBytes += f.Size
		}

		obs.OnProgress(Event{
			Phase:        PhaseRemove,
			Current:      i + 1,
			Total:        len(list),
			Path:         f.Path,
			Key:          f.Key,
			Size:         f.Size,
			RemovedFiles: result.Removed,
			RemovedBytes: result.RemovedBytes,
			Err:          err,
		})
	}

	e.logger.Info("Removal finished",
		zap.Int("removed", result.Removed),
		zap.String("removed_size", humanize.Bytes(uint64(result.RemovedBytes))),
		zap.Int("failed", len(result.Failed)),
		zap.Int("skipped", result.Skipped),
	)
	return result
}
