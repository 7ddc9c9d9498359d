package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"media-cleaner/core/reconcile"
	"media-cleaner/core/storage/mocks"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const mb = 1024 * 1024

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		stats reconcile.Statistics
		want  Summary
	}{
		{
			name:  "Empty",
			stats: reconcile.Statistics{},
			want:  Summary{TotalPercent: NotApplicable, RemovedPercent: NotApplicable},
		},
		{
			name:  "OneThird",
			stats: reconcile.Statistics{TotalFiles: 3, TotalBytes: 3 * mb, RemovedFiles: 1, RemovedBytes: mb},
			want:  Summary{TotalFiles: 3, TotalMB: 3, TotalPercent: "100.00%", RemovedFiles: 1, RemovedMB: 1, RemovedPercent: "33.33%"},
		},
		{
			name:  "NothingRemoved",
			stats: reconcile.Statistics{TotalFiles: 2, TotalBytes: mb / 2},
			want:  Summary{TotalFiles: 2, TotalMB: 0.5, TotalPercent: "100.00%", RemovedPercent: "0.00%"},
		},
		{
			// Files without bytes still leave the share undefined.
			name:  "EmptyFiles",
			stats: reconcile.Statistics{TotalFiles: 4, RemovedFiles: 4},
			want:  Summary{TotalFiles: 4, TotalPercent: NotApplicable, RemovedFiles: 4, RemovedPercent: NotApplicable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.stats))
		})
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(Summarize(reconcile.Statistics{TotalFiles: 2, TotalBytes: 2 * mb, RemovedFiles: 1, RemovedBytes: mb}))

	for _, want := range []string{"Files", "Amount", "Size MB", "Size %", "Total", "Removed", "2.00", "1.00", "100.00%", "50.00%"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "╭")

	empty := RenderSummary(Summarize(reconcile.Statistics{}))
	assert.Contains(t, empty, NotApplicable)
}

func TestRenderAreas(t *testing.T) {
	out := RenderAreas(SummarizeAreas([]reconcile.AreaStatistics{
		{Area: "product", Statistics: reconcile.Statistics{TotalFiles: 5, TotalBytes: mb, RemovedFiles: 1, RemovedBytes: mb / 4}},
		{Area: "cache"},
	}))

	assert.Contains(t, out, "product")
	assert.Contains(t, out, "25.00%")
	assert.Contains(t, out, "cache")
	assert.Contains(t, out, NotApplicable)
}

func TestRenderNotice(t *testing.T) {
	out := RenderNotice("WARNING!", "About to remove images. This cannot be undone.")
	assert.Contains(t, out, "WARNING!")
	assert.Contains(t, out, "About to remove images. This cannot be undone.")
	assert.True(t, strings.HasPrefix(out, "╔"))
}

func samplePlan() *reconcile.Plan {
	return &reconcile.Plan{
		Root: "/root",
		Removals: reconcile.RemovalList{
			{Path: "/root/product/c/d/img2.jpg", Area: "product", Size: 20, Key: "/c/d/img2.jpg"},
		},
		Stats:      reconcile.Statistics{TotalFiles: 2, TotalBytes: 30, RemovedFiles: 1, RemovedBytes: 20},
		Areas:      []reconcile.AreaStatistics{{Area: "product", Statistics: reconcile.Statistics{TotalFiles: 2, TotalBytes: 30, RemovedFiles: 1, RemovedBytes: 20}}},
		References: 1,
	}
}

func TestNewDocument(t *testing.T) {
	plan := samplePlan()

	t.Run("DryRun", func(t *testing.T) {
		doc := NewDocument(plan, nil, reconcile.Options{DryRun: true})
		assert.NotEmpty(t, doc.ID)
		assert.True(t, doc.DryRun)
		assert.Nil(t, doc.Removal)
		assert.Empty(t, doc.Paths)
		assert.Equal(t, "66.67%", doc.Summary.RemovedPercent)
	})

	t.Run("ShowPaths", func(t *testing.T) {
		doc := NewDocument(plan, nil, reconcile.Options{DryRun: true, ShowPaths: true})
		assert.Equal(t, []string{"/root/product/c/d/img2.jpg"}, doc.Paths)
	})

	t.Run("Live", func(t *testing.T) {
		result := &reconcile.RemovalResult{
			Removed: 0,
			Failed:  []*reconcile.DeletionError{{Path: "/root/product/c/d/img2.jpg", Err: errors.New("permission denied")}},
		}
		doc := NewDocument(plan, result, reconcile.Options{Confirmed: true})
		require.NotNil(t, doc.Removal)
		assert.Equal(t, []string{"/root/product/c/d/img2.jpg"}, doc.Removal.Failed)
	})
}

func TestDocument_JSON(t *testing.T) {
	doc := NewDocument(samplePlan(), nil, reconcile.Options{DryRun: true, Include: []string{"product"}})

	data, err := doc.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "/root", decoded["root"])
	assert.Equal(t, true, decoded["dry_run"])
	summary := decoded["summary"].(map[string]any)
	assert.EqualValues(t, 2, summary["total_files"])
	assert.NotContains(t, decoded, "removal")
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument(samplePlan(), nil, reconcile.Options{DryRun: true})
	doc.GeneratedAt = time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	doc.ID = "run-1"

	t.Run("Success", func(t *testing.T) {
		client := new(mocks.Client)
		var uploaded []byte
		client.On("PutObject", ctx, "media", "reports/20261019T083000Z-run-1.json", mock.Anything, mock.AnythingOfType("int64"),
			mock.MatchedBy(func(opts minio.PutObjectOptions) bool { return opts.ContentType == "application/json" })).
			Run(func(args mock.Arguments) {
				uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
			}).
			Return(minio.UploadInfo{}, nil)

		key, err := Archive(ctx, client, "media", "reports", doc)
		require.NoError(t, err)
		assert.Equal(t, "reports/20261019T083000Z-run-1.json", key)
		assert.True(t, bytes.Contains(uploaded, []byte(`"id": "run-1"`)))
		client.AssertExpectations(t)
	})

	t.Run("UploadFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("PutObject", ctx, "media", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("access denied"))

		_, err := Archive(ctx, client, "media", "reports", doc)
		assert.ErrorContains(t, err, "access denied")
	})
}
