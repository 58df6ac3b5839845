package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meter-billing/internal/api/models"
	"meter-billing/internal/ingest"
)

// NMIHandler lists the NMIs present in a source file, for pre-import
// validation.
type NMIHandler struct {
	source ingest.Source
}

func NewNMIHandler(source ingest.Source) *NMIHandler {
	return &NMIHandler{source: source}
}

// List handles GET /api/v1/nmis.
func (h *NMIHandler) List(c *gin.Context) {
	var req models.ListNMIsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	listings, err := h.source.ListNMIs(req.File)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "SOURCE_ERROR", Message: err.Error()},
		})
		return
	}

	out := make([]models.NMIInfo, 0, len(listings))
	for _, l := range listings {
		out = append(out, models.NMIInfo{NMI: l.NMI, Channels: l.Suffixes})
	}
	c.JSON(http.StatusOK, gin.H{"nmis": out})
}
