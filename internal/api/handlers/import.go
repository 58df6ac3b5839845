package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meter-billing/internal/api/models"
	"meter-billing/internal/ingest"
	"meter-billing/internal/model"
)

// ImportHandler handles merge-import requests.
type ImportHandler struct {
	importer *ingest.Importer
}

func NewImportHandler(importer *ingest.Importer) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// Run handles POST /api/v1/import.
func (h *ImportHandler) Run(c *gin.Context) {
	var req models.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	var fromDate time.Time
	if req.FromDate != "" {
		var err error
		fromDate, err = time.Parse(model.DayKey, req.FromDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: models.ErrorDetail{Code: "INVALID_DATE", Message: err.Error()},
			})
			return
		}
	}

	res, err := h.importer.Import(c.Request.Context(), req.File, req.NMI, fromDate)
	if err != nil {
		status := http.StatusInternalServerError
		code := "IMPORT_ERROR"
		if errors.Is(err, ingest.ErrNoBaseline) {
			status = http.StatusBadRequest
			code = "NO_BASELINE"
		}
		c.JSON(status, models.ErrorResponse{
			Error: models.ErrorDetail{Code: code, Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, models.ImportResponse{
		Status:     "ok",
		FromDate:   res.FromDate.Format(model.DayKey),
		Accepted:   res.Accepted,
		Duplicates: res.Duplicates,
		Filtered:   res.Filtered,
	})
}
