package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/rshade/carbon-dashboard/internal/auth"
	"github.com/rshade/carbon-dashboard/internal/carbon"
	"github.com/rshade/carbon-dashboard/internal/period"
	"github.com/rshade/carbon-dashboard/internal/report"
	"github.com/rshade/carbon-dashboard/internal/store"
)

// pinger is implemented by stores that can check their backend.
type pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	reports *report.Service
	store   store.Store
	table   carbon.FactorTable
	logger  zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(reports *report.Service, st store.Store, table carbon.FactorTable, logger zerolog.Logger) *Handler {
	return &Handler{
		reports: reports,
		store:   st,
		table:   table,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// activityResponse is a stored record with its per-source breakdown.
type activityResponse struct {
	carbon.ActivityRecord
	Breakdown carbon.Breakdown `json:"breakdown"`
}

// calculateResponse previews a calculation without storing anything.
type calculateResponse struct {
	Breakdown carbon.Breakdown `json:"breakdown"`
	Detail    string           `json:"detail"`
	// KnownRefrigerant is false when the code fell back to the generic GWP.
	KnownRefrigerant bool `json:"knownRefrigerant"`
}

type factorsResponse struct {
	ElectricityKgPerKwh float64            `json:"electricityKgPerKwh"`
	DieselKgPerLitre    float64            `json:"dieselKgPerLitre"`
	PetrolKgPerLitre    float64            `json:"petrolKgPerLitre"`
	GasKgPerKwh         float64            `json:"gasKgPerKwh"`
	RefrigerantGWP      map[string]float64 `json:"refrigerantGwp"`
}

// Health reports liveness and, when the store supports it, database reachability.
func (h *Handler) Health(c *gin.Context) {
	if p, ok := h.store.(pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			h.logger.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Report handles GET /api/report?period=&start=&end=.
func (h *Handler) Report(c *gin.Context) {
	sel, err := period.ParseSelector(c.Query("period"), c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account, ok := h.account(c)
	if !ok {
		return
	}

	r, err := h.reports.Build(c.Request.Context(), account, sel)
	if err != nil {
		h.internalError(c, err, "build report")
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListActivity handles GET /api/activity, newest month first.
func (h *Handler) ListActivity(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}
	records, err := h.store.ActivityRecords(c.Request.Context(), account.ID)
	if err != nil {
		h.internalError(c, err, "list activity")
		return
	}
	sorted := period.Latest(period.Sort(records))
	c.JSON(http.StatusOK, lo.Map(sorted, func(r carbon.ActivityRecord, _ int) activityResponse {
		return activityResponse{ActivityRecord: r, Breakdown: h.table.Breakdown(r)}
	}))
}

// SaveActivity handles PUT /api/activity. The body replaces the month's record.
func (h *Handler) SaveActivity(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}
	var row carbon.ActivityRow
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity payload"})
		return
	}

	rec, err := h.store.SaveActivity(c.Request.Context(), account.ID, row)
	if errors.Is(err, store.ErrInvalidRecord) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, err, "save activity")
		return
	}
	c.JSON(http.StatusOK, activityResponse{ActivityRecord: rec, Breakdown: h.table.Breakdown(rec)})
}

// DeleteActivity handles DELETE /api/activity/:month.
func (h *Handler) DeleteActivity(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}
	err := h.store.DeleteActivity(c.Request.Context(), account.ID, c.Param("month"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, err, "delete activity")
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveScope3 handles POST /api/scope3.
func (h *Handler) SaveScope3(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}
	var row carbon.Scope3Row
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scope 3 payload"})
		return
	}

	rec, err := h.store.SaveScope3(c.Request.Context(), account.ID, carbon.NormalizeScope3Row(row))
	if errors.Is(err, store.ErrInvalidRecord) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, err, "save scope 3")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Calculate handles POST /api/calculate.
func (h *Handler) Calculate(c *gin.Context) {
	var row carbon.ActivityRow
	if err := c.ShouldBindJSON(&row); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity payload"})
		return
	}
	rec := h.table.NormalizeRow(row)
	q := rec.Quantities()
	c.JSON(http.StatusOK, calculateResponse{
		Breakdown:        h.table.Calculate(q),
		Detail:           h.table.Detail(q),
		KnownRefrigerant: rec.RefrigerantCode == "" || h.table.KnownRefrigerant(rec.RefrigerantCode),
	})
}

// Factors handles GET /api/factors.
func (h *Handler) Factors(c *gin.Context) {
	gwp := make(map[string]float64, len(h.table.RefrigerantGWP)+1)
	for _, code := range h.table.RefrigerantCodes() {
		gwp[code] = h.table.GWPFor(code)
	}
	c.JSON(http.StatusOK, factorsResponse{
		ElectricityKgPerKwh: h.table.ElectricityKgPerKwh,
		DieselKgPerLitre:    h.table.DieselKgPerLitre,
		PetrolKgPerLitre:    h.table.PetrolKgPerLitre,
		GasKgPerKwh:         h.table.GasKgPerKwh,
		RefrigerantGWP:      gwp,
	})
}

func (h *Handler) account(c *gin.Context) (auth.Account, bool) {
	account, ok := auth.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
		return auth.Account{}, false
	}
	return account, true
}

func (h *Handler) internalError(c *gin.Context, err error, action string) {
	h.logger.Error().Err(err).Str("action", action).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
