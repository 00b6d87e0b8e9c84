package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carhive/api/internal/apperr"
	"carhive/api/internal/middleware"
)

type updateProfileRequest struct {
	Name      string `json:"name" binding:"required"`
	Telephone string `json:"telephone" binding:"required,max=10"`
}

func (h HandlerSet) UpdateMe(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperr.Unauthenticatedf("unauthenticated"))
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("", "%s", err.Error()))
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), id.UserID, req.Name, req.Telephone)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toUserResponse(user))
}

func (h HandlerSet) DeleteMe(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperr.Unauthenticatedf("unauthenticated"))
		return
	}

	if err := h.auth.DeleteAccount(c.Request.Context(), id.UserID); err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, "none", 10)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "account deleted"})
}
