package report

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"media-cleaner/core/reconcile"
	"media-cleaner/core/storage"
	"media-cleaner/core/utils"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Document is the machine readable report of one run.
type Document struct {
	ID              string         `json:"id"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Root            string         `json:"root"`
	DryRun          bool           `json:"dry_run"`
	CaseInsensitive bool           `json:"case_insensitive"`
	Include         []string       `json:"include"`
	Limit           int            `json:"limit"`
	References      int            `json:"references"`
	Interrupted     bool           `json:"interrupted"`
	Summary         Summary        `json:"summary"`
	Areas           []AreaSummary  `json:"areas"`
	Warnings        []string       `json:"warnings,omitempty"`
	Paths           []string       `json:"paths,omitempty"`
	Removal         *RemovalReport `json:"removal,omitempty"`
}

// RemovalReport describes what a live run actually deleted.
type RemovalReport struct {
	Removed   int      `json:"removed"`
	RemovedMB float64  `json:"removed_mb"`
	Failed    []string `json:"failed,omitempty"`
	Skipped   int      `json:"skipped"`
}

// NewDocument builds a report from a plan and, for live runs, its removal
// result. Paths are only listed when opts.ShowPaths is set.
func NewDocument(plan *reconcile.Plan, result *reconcile.RemovalResult, opts reconcile.Options) *Document {
	doc := &Document{
		ID:              uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		Root:            plan.Root,
		DryRun:          opts.DryRun,
		CaseInsensitive: opts.CaseInsensitive,
		Include:         opts.Include,
		Limit:           opts.Limit,
		References:      plan.References,
		Interrupted:     plan.Interrupted,
		Summary:         Summarize(plan.Stats),
		Areas:           SummarizeAreas(plan.Areas),
		Warnings:        plan.Warnings,
	}
	if opts.ShowPaths {
		doc.Paths = plan.Removals.Paths()
	}
	if result != nil && !opts.DryRun {
		doc.Removal = &RemovalReport{
			Removed:   result.Removed,
			RemovedMB: utils.ToMegabytes(result.RemovedBytes),
			Failed:    result.FailedPaths(),
			Skipped:   result.Skipped,
		}
	}
	return doc
}

// JSON encodes the document.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// ObjectName returns the archive key of the document below prefix.
func (d *Document) ObjectName(prefix string) string {
	return path.Join(prefix, d.GeneratedAt.Format("20060102T150405Z")+"-"+d.ID+".json")
}

// Archive uploads the document to bucket below prefix and returns its key.
func Archive(ctx context.Context, client storage.Client, bucket, prefix string, doc *Document) (string, error) {
	data, err := doc.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := doc.ObjectName(prefix)
	_, err = client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	return key, nil
}
