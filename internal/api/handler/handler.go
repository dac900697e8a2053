package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"urbaneye/backend/internal/api/resp"
	"urbaneye/backend/internal/complaint"
	"urbaneye/backend/internal/config"
	"urbaneye/backend/internal/events"
	"urbaneye/backend/internal/mlclient"
	"urbaneye/backend/internal/storage"
)

// Handler wires the HTTP surface to the lifecycle service and its
// collaborators.
type Handler struct {
	Complaints *complaint.Service
	Storage    storage.Storage
	ML         *mlclient.Client
	Hub        *events.Hub
	Config     *config.Config
	Logger     *zap.Logger
}

func NewHandler(svc *complaint.Service, s storage.Storage, ml *mlclient.Client, hub *events.Hub, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		Complaints: svc,
		Storage:    s,
		ML:         ml,
		Hub:        hub,
		Config:     cfg,
		Logger:     logger,
	}
}

// fail maps the lifecycle error taxonomy onto HTTP responses. Unexpected
// errors surface as a generic 500 and are logged with full context.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, complaint.ErrValidation):
		resp.BadRequest(c, err.Error())
	case errors.Is(err, complaint.ErrNotFound):
		resp.NotFound(c, "complaint not found")
	case errors.Is(err, complaint.ErrForbidden):
		resp.Forbidden(c, err.Error())
	case errors.Is(err, complaint.ErrUnauthorized):
		resp.Unauthorized(c, err.Error())
	case errors.Is(err, complaint.ErrConflict):
		resp.Conflict(c, err.Error())
	default:
		h.Logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		resp.ServerError(c, "internal server error")
	}
}
