package media

import (
	"errors"
	"strconv"

	"media-cleaner/core/logger"
	"media-cleaner/core/reconcile"
	"media-cleaner/core/report"
	"media-cleaner/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for media reconciliation. It never removes files.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the media routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/media")
	group.Get("/unused", h.HandleUnused)
	group.Get("/areas", h.HandleAreas)
	group.Post("/references/refresh", h.HandleRefresh)
}

// HandleUnused reports the files a clean run would remove.
// @Summary Unused Media Report
// @Description Runs a dry-run scan of the media root and reports unreferenced files.
// @Tags media
// @Produce json
// @Param limit query int false "Stop after this many classified files"
// @Param include query string false "Comma separated areas, in classification order"
// @Param case_insensitive query boolean false "Compare keys case-insensitively"
// @Param show_paths query boolean false "List the tagged paths"
// @Success 200 {object} report.Document "Dry-run report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /media/unused [get]
func (h *Handler) HandleUnused(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	opts, err := h.parseOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	plan, err := h.service.Plan(c.Context(), opts, nil)
	if err != nil {
		l.Error("Media scan failed", zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, reconcile.ErrInvalidRoot) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(report.NewDocument(plan, nil, opts))
}

// parseOptions builds forced dry-run options from the query string.
func (h *Handler) parseOptions(c *fiber.Ctx) (reconcile.Options, error) {
	opts := h.service.Options()
	opts.DryRun = true
	opts.Confirmed = false

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("limit must be an integer")
		}
		opts.Limit = limit
	}
	if v := c.Query("include"); v != "" {
		opts.Include = utils.SplitList(v)
	}
	if v := c.Query("case_insensitive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("case_insensitive must be a boolean")
		}
		opts.CaseInsensitive = b
	}
	opts.ShowPaths = c.QueryBool("show_paths", false)
	return opts, nil
}

// HandleAreas lists the configured areas.
// @Summary Media Areas
// @Tags media
// @Produce json
// @Success 200 {array} map[string]string "Areas"
// @Router /media/areas [get]
func (h *Handler) HandleAreas(c *fiber.Ctx) error {
	table := h.service.Areas()
	areas := make([]fiber.Map, 0, len(table.Names()))
	for _, name := range table.Names() {
		a, _ := table.Lookup(name)
		areas = append(areas, fiber.Map{
			"name":    a.Name,
			"kind":    a.Kind.String(),
			"pattern": a.Pattern.String(),
		})
	}
	return c.JSON(areas)
}

// HandleRefresh reloads the reference set.
// @Summary Refresh References
// @Description Drops the cached catalog references and loads them again.
// @Tags media
// @Produce json
// @Success 200 {object} map[string]interface{} "Reference count"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /media/references/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	fold := h.service.Options().CaseInsensitive
	refs, err := h.service.RefreshReferences(c.Context(), fold)
	if err != nil {
		l.Error("Reference refresh failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("References refreshed", zap.Int("references", refs.Len()))
	return c.JSON(fiber.Map{
		"source":     h.service.source.Name(),
		"references": refs.Len(),
	})
}
