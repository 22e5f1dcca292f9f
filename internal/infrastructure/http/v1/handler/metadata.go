package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Metadata returns the stored pyramid summary for a game.
func (h *Handler) Metadata(c *gin.Context) {
	meta, err := h.generator.PyramidMetadata(c.Request.Context(), c.Param("game_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "ok", meta)
}
