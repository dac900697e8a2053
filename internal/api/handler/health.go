package handler

import (
	"github.com/gin-gonic/gin"

	"urbaneye/backend/internal/api/resp"
)

// Health is the service liveness probe.
func (h *Handler) Health(c *gin.Context) {
	resp.OK(c, gin.H{"status": "ok"})
}

// MLHealth reports whether the ML advisor is reachable with its model
// loaded. Off the submission hot path, short timeout.
func (h *Handler) MLHealth(c *gin.Context) {
	healthy := h.ML.Healthy(c.Request.Context())
	resp.OK(c, gin.H{"mlServiceAvailable": healthy})
}
