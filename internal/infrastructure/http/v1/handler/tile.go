package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/tile"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
)

// Tile serves GET /tiles/:game_id/:z/:x/:y_format where the last path
// segment carries both the row and the extension, e.g. "5.png".
func (h *Handler) Tile(c *gin.Context) {
	gameID := c.Param("game_id")

	z, err := strconv.ParseUint(c.Param("z"), 10, 8)
	if err != nil {
		h.respondError(c, apperror.Newf(apperror.KindInvalidInput, "z should be an integer: %s", c.Param("z")))
		return
	}

	x, err := strconv.ParseUint(c.Param("x"), 10, 32)
	if err != nil {
		h.respondError(c, apperror.Newf(apperror.KindInvalidInput, "x should be an integer: %s", c.Param("x")))
		return
	}

	yStr, extension, ok := strings.Cut(c.Param("y_format"), ".")
	if !ok {
		h.respondError(c, apperror.Newf(apperror.KindInvalidInput,
			"tile path should end with <y>.<format>: %s", c.Param("y_format")))
		return
	}

	y, err := strconv.ParseUint(yStr, 10, 32)
	if err != nil {
		h.respondError(c, apperror.Newf(apperror.KindInvalidInput, "y should be an integer: %s", yStr))
		return
	}

	format, err := tile.ParseFormat(extension)
	if err != nil {
		h.respondError(c, err)
		return
	}

	coord := tile.Coordinate{X: uint32(x), Y: uint32(y), Z: uint8(z)}

	l := logger.FromContext(c.Request.Context())
	l.Debug("tile request", "game", gameID, "z", coord.Z, "x", coord.X, "y", coord.Y, "format", format.String())

	if match := c.GetHeader("If-None-Match"); match != "" {
		etag, err := h.generator.CachedETag(c.Request.Context(), gameID, coord, format)
		if err == nil && etag == match {
			c.Header("ETag", etag)
			c.Status(http.StatusNotModified)
			return
		}
	}

	blob, err := h.generator.GetTile(c.Request.Context(), gameID, coord, format)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("ETag", blob.ETag)
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", h.cfg.CacheMaxAge))
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}

// InvalidateCache drops every cached tile for a game.
func (h *Handler) InvalidateCache(c *gin.Context) {
	gameID := c.Param("game_id")

	removed, err := h.generator.InvalidateGameTiles(c.Request.Context(), gameID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("cache invalidated", "game", gameID, "removed", removed)

	h.respond(c, http.StatusOK, "cache invalidated", gin.H{"removed": removed})
}
