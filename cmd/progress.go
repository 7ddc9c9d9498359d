package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"media-cleaner/core/reconcile"
	"media-cleaner/core/utils"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// logEvery is the number of files between progress log lines when stdout is
// not a terminal.
const logEvery = 1000

// progressObserver renders engine events as a progress bar on a terminal and
// as periodic log lines everywhere else.
type progressObserver struct {
	out         io.Writer
	interactive bool
	showPaths   bool
	logger      *zap.Logger

	phase reconcile.Phase
	bar   *progressbar.ProgressBar
}

func newProgressObserver(out io.Writer, interactive, showPaths bool, logger *zap.Logger) *progressObserver {
	return &progressObserver{
		out:         out,
		interactive: interactive,
		showPaths:   showPaths,
		logger:      logger,
	}
}

// isInteractive reports whether f is attached to a terminal.
func isInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *progressObserver) OnProgress(e reconcile.Event) {
	if e.Phase != p.phase {
		p.Finish()
		p.phase = e.Phase
		if p.interactive {
			p.bar = progressbar.NewOptions(e.Total,
				progressbar.OptionSetWriter(p.out),
				progressbar.OptionSetDescription(describe(e)),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionSetPredictTime(true),
			)
		}
	}

	if e.Phase == reconcile.PhaseScan && e.Tagged && p.showPaths {
		if p.bar != nil {
			_ = p.bar.Clear()
		}
		fmt.Fprintf(p.out, "Tagged for removal: %s (%s)\n", e.Key, humanize.IBytes(uint64(e.Size)))
	}
	if e.Err != nil && p.bar != nil {
		_ = p.bar.Clear()
	}

	if p.bar != nil {
		p.bar.Describe(describe(e))
		_ = p.bar.Set(e.Current)
		return
	}

	if e.Current%logEvery == 0 || e.Current == e.Total {
		p.logger.Info("Progress",
			zap.String("phase", string(e.Phase)),
			zap.Int("current", e.Current),
			zap.Int("total", e.Total),
			zap.Int("files", e.RemovedFiles),
			zap.Float64("size_mb", utils.ToMegabytes(e.RemovedBytes)),
		)
	}
}

// Finish completes the current bar, if any.
func (p *progressObserver) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	fmt.Fprintln(p.out)
	p.bar = nil
}

func describe(e reconcile.Event) string {
	label := "Files to remove"
	if e.Phase == reconcile.PhaseRemove {
		label = "Files removed"
	}
	return fmt.Sprintf("[%s: %d, Size %.2f MB]", label, e.RemovedFiles, utils.ToMegabytes(e.RemovedBytes))
}
