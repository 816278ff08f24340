package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examify/auth-service/internal/domain"
	apperrors "github.com/examify/auth-service/internal/errors"
	"github.com/examify/auth-service/internal/log"
)

// ListUsers godoc
// @Summary List all users
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.User
// @Failure 403 {object} map[string]string
// @Router /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get one user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} domain.User
// @Failure 404 {object} map[string]string
// @Router /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.Store.FindUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if u == nil {
		errJSON(c, apperrors.ErrUserNotFound)
		return
	}
	c.JSON(http.StatusOK, u)
}

type roleReq struct {
	Role string `json:"role"`
}

// UpdateRole godoc
// @Summary Change a user's role
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "user id"
// @Param payload body roleReq true "role"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /users/{id}/role [put]
func (h *Handler) UpdateRole(c *gin.Context) {
	var in roleReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !domain.ValidRole(in.Role) {
		errJSON(c, apperrors.ErrInvalidRole)
		return
	}

	ctx := c.Request.Context()
	u, err := h.Store.FindUserByID(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if u == nil {
		errJSON(c, apperrors.ErrUserNotFound)
		return
	}

	// demoting the only admin would lock everyone out of this surface
	if u.Role == domain.RoleAdmin && in.Role != domain.RoleAdmin {
		n, err := h.Store.CountAdmins(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
			return
		}
		if n <= 1 {
			errJSON(c, apperrors.ErrLastAdmin)
			return
		}
	}

	if err := h.Store.UpdateRole(ctx, u.ID.Hex(), in.Role); err != nil {
		errJSON(c, err)
		return
	}
	u.Role = in.Role

	log.Infof("role updated user=%s role=%s", u.ID.Hex(), u.Role)
	c.JSON(http.StatusOK, gin.H{"message": "User role updated successfully", "user": u})
}

// ToggleStatus godoc
// @Summary Toggle a user's activation flag
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /users/{id}/toggle-status [put]
func (h *Handler) ToggleStatus(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := h.Store.FindUserByID(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if u == nil {
		errJSON(c, apperrors.ErrUserNotFound)
		return
	}
	if u.Role == domain.RoleAdmin {
		errJSON(c, apperrors.ErrAdminProtected)
		return
	}

	if err := h.Store.SetVerified(ctx, u.ID.Hex(), !u.Verified); err != nil {
		errJSON(c, err)
		return
	}
	u.Verified = !u.Verified

	log.Infof("status toggled user=%s verified=%t", u.ID.Hex(), u.Verified)
	c.JSON(http.StatusOK, gin.H{"message": "User status updated successfully", "user": u})
}
