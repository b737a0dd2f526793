package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "housingcli/internal/errors"
	"housingcli/internal/services"
	"housingcli/pkg/contracts/domain"
)

// ListResponse wraps a collection with its size
type ListResponse struct {
	Count int         `json:"count"`
	Data  interface{} `json:"data"`
}

// MonthlyRow is one month of an area's series as served over HTTP
type MonthlyRow struct {
	Month            string   `json:"month"`
	SalesCount       int      `json:"sales_count"`
	MedianSaleAmount *float64 `json:"median_sale_amount"`
	AvgAssessedValue *float64 `json:"avg_assessed_value"`
	AvgSalesRatio    *float64 `json:"avg_sales_ratio"`
	MoM              *float64 `json:"mom"`
	YoY              *float64 `json:"yoy"`
}

// AreaMonthlyResponse is the body of GET /api/v1/areas/{area}/monthly
type AreaMonthlyResponse struct {
	Area   string       `json:"area"`
	Count  int          `json:"count"`
	Months []MonthlyRow `json:"months"`
}

// ArtifactHandler serves the pipeline's analytics tables as JSON
type ArtifactHandler struct {
	service ArtifactReader
	logger  *slog.Logger
}

// NewArtifactHandler creates a new artifact handler
func NewArtifactHandler(service ArtifactReader, logger *slog.Logger) *ArtifactHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactHandler{
		service: service,
		logger:  logger.With(slog.String("component", "artifact_handler")),
	}
}

// Routes returns the artifact routes
func (h *ArtifactHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/affordability", h.GetAffordability)
	r.Get("/areas", h.GetAreas)
	r.Get("/areas/{area}/monthly", h.GetAreaMonthly)
	r.Get("/manifest", h.GetManifest)
	return r
}

// GetAffordability handles GET /affordability?passing=&limit=
func (h *ArtifactHandler) GetAffordability(w http.ResponseWriter, r *http.Request) {
	var q services.AffordabilityQuery

	if v := r.URL.Query().Get("passing"); v != "" {
		passing, err := strconv.ParseBool(v)
		if err != nil {
			h.renderError(w, r, apierrors.InvalidParameter("passing", err))
			return
		}
		q.PassingOnly = passing
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err == nil && limit < 0 {
			err = services.ErrInvalidLimit
		}
		if err != nil {
			h.renderError(w, r, apierrors.InvalidParameter("limit", err))
			return
		}
		q.Limit = limit
	}

	rows, err := h.service.Affordability(r.Context(), q)
	if err != nil {
		h.handleServiceError(w, r, "affordability table", err)
		return
	}
	if rows == nil {
		rows = []domain.AffordabilityRow{}
	}
	render.JSON(w, r, ListResponse{Count: len(rows), Data: rows})
}

// GetAreas handles GET /areas
func (h *ArtifactHandler) GetAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.service.Areas(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "monthly table", err)
		return
	}
	render.JSON(w, r, ListResponse{Count: len(areas), Data: areas})
}

// GetAreaMonthly handles GET /areas/{area}/monthly
func (h *ArtifactHandler) GetAreaMonthly(w http.ResponseWriter, r *http.Request) {
	area := chi.URLParam(r, "area")
	series, err := h.service.AreaMonthly(r.Context(), area)
	if err != nil {
		if errors.Is(err, services.ErrAreaNotFound) {
			h.renderError(w, r, apierrors.NotFoundError("area "+area))
			return
		}
		h.handleServiceError(w, r, "monthly table", err)
		return
	}

	resp := AreaMonthlyResponse{Area: area, Count: len(series), Months: make([]MonthlyRow, 0, len(series))}
	if len(series) > 0 {
		resp.Area = series[0].Area
	}
	for _, m := range series {
		resp.Months = append(resp.Months, MonthlyRow{
			Month:            m.MonthKey.UTC().Format("2006-01"),
			SalesCount:       m.SalesCount,
			MedianSaleAmount: m.MedianSaleAmount,
			AvgAssessedValue: m.AvgAssessedValue,
			AvgSalesRatio:    m.AvgSalesRatio,
			MoM:              m.MoM,
			YoY:              m.YoY,
		})
	}
	render.JSON(w, r, resp)
}

// GetManifest handles GET /manifest
func (h *ArtifactHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.service.Manifest(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "manifest", err)
		return
	}
	w.Header().Set("Last-Modified", manifest.GeneratedAt.UTC().Format(http.TimeFormat))
	render.JSON(w, r, manifest)
}

func (h *ArtifactHandler) handleServiceError(w http.ResponseWriter, r *http.Request, artifact string, err error) {
	if errors.Is(err, services.ErrInvalidLimit) {
		h.renderError(w, r, apierrors.InvalidParameter("limit", err))
		return
	}
	apiErr := apierrors.ArtifactError(artifact, err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "artifact read failed",
			slog.String("artifact", artifact),
			slog.String("error", err.Error()))
	}
	h.renderError(w, r, apiErr)
}

func (h *ArtifactHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	if err := render.Render(w, r, apierrors.NewErrorResponse(apiErr)); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render error response",
			slog.String("error", err.Error()))
	}
}
