package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"team-portal/internal/models"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type scheduleRequest struct {
	Schedule models.WeekSchedule `json:"schedule" binding:"required,dive"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registration submitted, wait for approval",
		"user":    user,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, expires, err := h.tokens.Issue(user)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expires,
		"user":       user,
	})
}

func (h *Handler) me(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	open, err := h.entries.OpenEntry(ctx, user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{
		"user":           user,
		"clocked_in":     open != nil,
		"open_entry":     open,
		"weekly_minutes": user.WorkSchedule.WeeklyMinutes(),
		"total_hours":    models.FormatMinutes(user.TotalHoursWorked),
		"bank_of_hours":  models.FormatMinutes(user.BankOfHours),
	}

	// dashboard badge for administrators
	if user.IsManagement() {
		pending, err := h.users.PendingCount(ctx)
		if err != nil {
			h.writeError(c, err)
			return
		}
		resp["pending_approvals"] = pending
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) updateSchedule(c *gin.Context) {
	actor, _ := identity(c)

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users.SetSchedule(c.Request.Context(), actor, req.Schedule)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
