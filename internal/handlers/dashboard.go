package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) Dashboard(c *gin.Context) {
	dashboard, err := h.dashboard.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, dashboard)
}
