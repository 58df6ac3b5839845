package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meter-billing/internal/api/models"
	"meter-billing/internal/billing"
	"meter-billing/internal/model"
	"meter-billing/internal/tariff"
)

// BillingHandler serves range bills over the canonical dataset.
type BillingHandler struct {
	agg *billing.Aggregator
}

func NewBillingHandler(agg *billing.Aggregator) *BillingHandler {
	return &BillingHandler{agg: agg}
}

// Summary handles GET /api/v1/billing/summary.
func (h *BillingHandler) Summary(c *gin.Context) {
	req, start, end, ok := bindBillingRequest(c)
	if !ok {
		return
	}

	sum, err := h.agg.CostRange(c.Request.Context(), req.Vendor, start, end)
	if err != nil {
		writeBillingError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SummaryResponse{
		Vendor:             sum.Vendor,
		StartDate:          sum.StartDate.Format(model.DayKey),
		EndDate:            sum.EndDate.Format(model.DayKey),
		TotalDays:          sum.TotalDays,
		DailyCosts:         sum.DailyCosts,
		DailySolar:         sum.DailySolar,
		TotalUsageCost:     sum.TotalUsageCost,
		TotalSolarCredit:   sum.TotalSolarCredit,
		TotalSupplyCharges: sum.TotalSupplyCharges,
		NetCost:            sum.NetCost,
	})
}

// Breakdown handles GET /api/v1/billing/breakdown.
func (h *BillingHandler) Breakdown(c *gin.Context) {
	req, start, end, ok := bindBillingRequest(c)
	if !ok {
		return
	}

	b, err := h.agg.Breakdown(c.Request.Context(), req.Vendor, start, end)
	if err != nil {
		writeBillingError(c, err)
		return
	}

	usage := make(map[string]models.Bucket, len(b.Usage))
	for label, bucket := range b.Usage {
		usage[string(label)] = models.Bucket{KWh: bucket.KWh, Cost: bucket.Cost}
	}

	c.JSON(http.StatusOK, models.BreakdownResponse{
		Vendor:             b.Vendor,
		StartDate:          b.StartDate.Format(model.DayKey),
		EndDate:            b.EndDate.Format(model.DayKey),
		TotalDays:          b.TotalDays,
		Usage:              usage,
		Solar:              models.SolarBucket{KWh: b.Solar.KWh, Credit: b.Solar.Credit},
		TotalUsageKWh:      b.TotalUsageKWh,
		TotalUsageCost:     b.TotalUsageCost,
		TotalSupplyCharges: b.TotalSupplyCharges,
		SubTotalCost:       b.SubTotalCost,
		NetCost:            b.NetCost,
	})
}

func bindBillingRequest(c *gin.Context) (models.BillingRequest, time.Time, time.Time, bool) {
	var req models.BillingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return req, time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(model.DayKey, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_DATE", Message: err.Error()},
		})
		return req, time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(model.DayKey, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_DATE", Message: err.Error()},
		})
		return req, time.Time{}, time.Time{}, false
	}
	return req, start, end, true
}

func writeBillingError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "BILLING_ERROR"
	switch {
	case errors.Is(err, tariff.ErrConfigNotFound):
		status = http.StatusNotFound
		code = "CONFIG_NOT_FOUND"
	case errors.Is(err, tariff.ErrNoRateMatch):
		status = http.StatusUnprocessableEntity
		code = "NO_RATE_MATCH"
	}
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: err.Error()},
	})
}
