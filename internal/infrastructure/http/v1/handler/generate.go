package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/tile"
	"github.com/richiexuetang/ritcher-map/internal/usecase"
)

type boundsRequest struct {
	North float64 `json:"north" validate:"gte=-90,lte=90"`
	South float64 `json:"south" validate:"gte=-90,lte=90"`
	East  float64 `json:"east" validate:"gte=-180,lte=180"`
	West  float64 `json:"west" validate:"gte=-180,lte=180"`
}

func (b *boundsRequest) toBounds() *tile.Bounds {
	if b == nil {
		return nil
	}
	return &tile.Bounds{North: b.North, South: b.South, East: b.East, West: b.West}
}

type generatePyramidRequest struct {
	GameID         string `json:"game_id" validate:"required"`
	SourceImageURL string `json:"source_image_url" validate:"required,url"`
	MinZoom        uint8  `json:"min_zoom"`
	// MaxZoom left out means "derive from the source image size";
	// an explicit 0 is a valid single-tile pyramid.
	MaxZoom *uint8         `json:"max_zoom" validate:"omitempty,lte=20"`
	Format  string         `json:"format"`
	Bounds  *boundsRequest `json:"bounds"`
}

// GeneratePyramid slices a single source image into a full tile
// pyramid. The request blocks until every zoom level is stored.
func (h *Handler) GeneratePyramid(c *gin.Context) {
	var req generatePyramidRequest
	if !h.bind(c, &req) {
		return
	}

	format, err := parseFormatOrDefault(req.Format)
	if err != nil {
		h.respondError(c, err)
		return
	}

	meta, err := h.generator.GeneratePyramid(c.Request.Context(), usecase.PyramidRequest{
		GameID:         req.GameID,
		SourceImageURL: req.SourceImageURL,
		MinZoom:        req.MinZoom,
		MaxZoom:        req.MaxZoom,
		Format:         format,
		Bounds:         req.Bounds.toBounds(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "pyramid generated", meta)
}

type generateBatchRequest struct {
	GameID     string         `json:"game_id" validate:"required"`
	ZoomLevels []uint8        `json:"zoom_levels" validate:"required,min=1"`
	Format     string         `json:"format"`
	Bounds     *boundsRequest `json:"bounds"`
}

type generateBatchResponse struct {
	Generated int     `json:"generated"`
	Failed    int     `json:"failed"`
	Skipped   []uint8 `json:"skipped,omitempty"`
}

// GenerateBatch pre-renders tiles covering a region at the requested
// zoom levels.
func (h *Handler) GenerateBatch(c *gin.Context) {
	var req generateBatchRequest
	if !h.bind(c, &req) {
		return
	}

	format, err := parseFormatOrDefault(req.Format)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.generator.GenerateBatch(c.Request.Context(), usecase.BatchRequest{
		GameID:     req.GameID,
		ZoomLevels: req.ZoomLevels,
		Format:     format,
		Bounds:     req.Bounds.toBounds(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "batch complete", generateBatchResponse{
		Generated: len(result.Generated),
		Failed:    result.Failed,
		Skipped:   result.Skipped,
	})
}

// bind decodes and validates a JSON request body, responding with 400
// on failure.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.respondError(c, apperror.Wrap(apperror.KindInvalidInput, "decode request body", err))
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(c, apperror.Wrap(apperror.KindInvalidInput, "validate request body", err))
		return false
	}
	return true
}

func parseFormatOrDefault(s string) (tile.Format, error) {
	if s == "" {
		return tile.FormatPNG, nil
	}
	return tile.ParseFormat(s)
}
