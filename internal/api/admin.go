package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"team-portal/internal/models"
)

type roleSectorRequest struct {
	Role   string `json:"role" binding:"required"`
	Sector string `json:"sector" binding:"required"`
}

func (h *Handler) listUsers(c *gin.Context) {
	actor, _ := identity(c)

	users, err := h.users.ListUsers(c.Request.Context(), actor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) listPending(c *gin.Context) {
	actor, _ := identity(c)

	users, err := h.users.ListPending(c.Request.Context(), actor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

func (h *Handler) approveUser(c *gin.Context) {
	actor, _ := identity(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	user, err := h.users.Approve(c.Request.Context(), actor, id)
	if errors.Is(err, models.ErrAlreadyApproved) {
		c.JSON(http.StatusOK, gin.H{"message": "user was already approved", "user": user})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user approved", "user": user})
}

func (h *Handler) updateRoleSector(c *gin.Context) {
	actor, _ := identity(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req roleSectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users.UpdateRoleSector(c.Request.Context(), actor, id, req.Role, req.Sector)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) toggleActive(c *gin.Context) {
	actor, _ := identity(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	user, err := h.users.ToggleActive(c.Request.Context(), actor, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
