package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ActorDetails 演员详情，实时拉取
func (h *Handler) ActorDetails(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, "Actor not found.")
		return
	}

	actor, err := h.Catalog.ActorDetails(c.Request.Context(), id)
	if err != nil {
		h.renderRemoteError(c, err)
		return
	}

	c.HTML(http.StatusOK, "actor_details.html", h.RenderData(c, gin.H{
		"Title": actor.Name + " - " + h.Config.SiteName,
		"Actor": actor,
	}))
}
