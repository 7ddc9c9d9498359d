package integrity

import (
	"context"

	"media-cleaner/core/storage"
	"media-cleaner/feature/integrity/checks"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries everything the checks inspect. Nil backends are reported as errors.
type Deps struct {
	Fs        afero.Fs
	MediaRoot string
	DB        *gorm.DB
	Table     string
	Client    storage.Client
	Bucket    string
	// Objects must be readable in Bucket (e.g. the reference export).
	Objects []string
}

// Service handles integrity checks.
type Service struct {
	deps   Deps
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(deps Deps, logger *zap.Logger) *Service {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	return &Service{deps: deps, logger: logger}
}

// CheckMedia returns the folders missing below the media root.
func (s *Service) CheckMedia() ([]string, error) {
	return checks.CheckMedia(s.deps.Fs, s.deps.MediaRoot)
}

// FixMedia creates the missing folders.
func (s *Service) FixMedia(missing []string) error {
	return checks.FixMedia(s.deps.Fs, s.deps.MediaRoot, s.logger, missing)
}

// CheckCatalog verifies the gallery table schema.
func (s *Service) CheckCatalog() (*checks.CatalogReport, error) {
	return checks.CheckCatalog(s.deps.DB, s.deps.Table)
}

// CheckStorage returns the required objects missing from the bucket.
func (s *Service) CheckStorage(ctx context.Context) ([]string, error) {
	return checks.CheckStorage(ctx, s.deps.Client, s.deps.Bucket, s.deps.Objects)
}

// Result is the outcome of one check.
type Result struct {
	Status  string   `json:"status"` // "ok", "missing", "error"
	Missing []string `json:"missing,omitempty"`
	Error   string   `json:"error,omitempty"`
	Catalog any      `json:"catalog,omitempty"`
}

// Report combines every check.
type Report struct {
	Media   Result `json:"media"`
	Catalog Result `json:"catalog"`
	Storage Result `json:"storage"`
}

// Healthy reports whether every check passed.
func (r *Report) Healthy() bool {
	return r.Media.Status == "ok" && r.Catalog.Status == "ok" && r.Storage.Status == "ok"
}

// RunAll runs every check. Disabled backends are reported as errors.
func (s *Service) RunAll(ctx context.Context) *Report {
	report := &Report{}

	missing, err := s.CheckMedia()
	report.Media = missingResult(missing, err)

	if cat, err := s.CheckCatalog(); err != nil {
		report.Catalog = Result{Status: "error", Error: err.Error()}
	} else {
		status := "ok"
		if !cat.Matched {
			status = "missing"
		}
		report.Catalog = Result{Status: status, Catalog: cat}
	}

	missing, err = s.CheckStorage(ctx)
	report.Storage = missingResult(missing, err)

	s.logger.Info("Integrity checks finished",
		zap.String("media", report.Media.Status),
		zap.String("catalog", report.Catalog.Status),
		zap.String("storage", report.Storage.Status),
	)
	return report
}

func missingResult(missing []string, err error) Result {
	switch {
	case err != nil:
		return Result{Status: "error", Error: err.Error()}
	case len(missing) > 0:
		return Result{Status: "missing", Missing: missing}
	default:
		return Result{Status: "ok"}
	}
}
