package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carhive/api/internal/apperr"
	"carhive/api/internal/middleware"
	"carhive/api/internal/models"
	"carhive/api/internal/service"
)

type registerRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Telephone string `json:"telephone" binding:"required,max=10"`
	Password  string `json:"password" binding:"required,min=6"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Telephone string    `json:"telephone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Telephone: user.Telephone,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("", "%s", err.Error()))
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Telephone: req.Telephone,
		Password:  req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendSession(c, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("", "%s", err.Error()))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendSession(c, http.StatusOK, result)
}

// Logout replaces the session cookie with a short-lived tombstone. The token
// itself stays valid until expiry; there is no server-side revocation.
func (h HandlerSet) Logout(c *gin.Context) {
	h.setSessionCookie(c, "none", 10)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

func (h HandlerSet) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperr.Unauthenticatedf("unauthenticated"))
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), id.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toUserResponse(user))
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("email", "%s", err.Error()))
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "email sent with password reset instructions"})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("password", "%s", err.Error()))
		return
	}

	result, err := h.auth.ResetPassword(c.Request.Context(), c.Param("resetToken"), req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendSession(c, http.StatusOK, result)
}

// sendSession writes the credential both ways the boundary supports: as a
// bearer token in the body and as an http-only cookie.
func (h HandlerSet) sendSession(c *gin.Context, status int, result service.AuthResult) {
	h.setSessionCookie(c, result.Token, int(h.cfg.Security.CookieTTL.Seconds()))

	c.JSON(status, gin.H{
		"success": true,
		"token":   result.Token,
		"data":    toUserResponse(result.User),
	})
}

func (h HandlerSet) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetCookie(
		h.cfg.Security.CookieName,
		value,
		maxAge,
		"/",
		"",
		h.cfg.Security.CookieSecure,
		true,
	)
}
