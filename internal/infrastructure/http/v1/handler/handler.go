package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/richiexuetang/ritcher-map/internal/usecase"
	"github.com/richiexuetang/ritcher-map/pkg/config"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
)

type Handler struct {
	generator *usecase.Generator
	validate  *validator.Validate
	cfg       config.Tile
	logger    logger.Logger
}

func NewHandler(g *usecase.Generator, validate *validator.Validate, cfg config.Tile, l logger.Logger) *Handler {
	return &Handler{
		generator: g,
		validate:  validate,
		cfg:       cfg,
		logger:    l,
	}
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (h *Handler) respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, response{
		Success: code < 400,
		Message: message,
		Data:    data,
	})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= 500 {
		h.logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", code,
			"error", err,
		)
	}
	h.respond(c, code, err.Error(), nil)
}

func (h *Handler) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
