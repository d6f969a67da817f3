package handler

import (
	"net/http"

	"github.com/AssetDocs/legacylocker/internal/scanner"
	"github.com/AssetDocs/legacylocker/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// ScanHandler exposes the grace-period sweep to the external scheduler.
// The route is guarded by InternalSecretMiddleware.
type ScanHandler struct {
	runner *scanner.Runner
}

func NewScanHandler(runner *scanner.Runner) *ScanHandler {
	return &ScanHandler{runner: runner}
}

func (h *ScanHandler) Trigger(c *gin.Context) {
	processed, err := h.runner.RunOnce(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "SCAN_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"processed": processed}))
}
