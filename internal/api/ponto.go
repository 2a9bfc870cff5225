package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type occurrenceRequest struct {
	Description string `json:"description" binding:"required"`
	UserID      uint   `json:"user_id"`
}

func (h *Handler) clockIn(c *gin.Context) {
	actor, _ := identity(c)

	res, err := h.entries.ClockIn(c.Request.Context(), actor, h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	body := gin.H{
		"entry":              res.Entry,
		"outside_work_hours": res.OutsideWorkHours,
	}
	if res.OutsideWorkHours {
		body["warning"] = "clock-in registered outside your work schedule"
	}
	c.JSON(http.StatusCreated, body)
}

func (h *Handler) clockOut(c *gin.Context) {
	actor, _ := identity(c)

	res, err := h.entries.ClockOut(c.Request.Context(), actor, h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) registerOccurrence(c *gin.Context) {
	actor, _ := identity(c)

	var req occurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.entries.RegisterOccurrence(c.Request.Context(), actor, req.UserID, req.Description, h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) listEntries(c *gin.Context) {
	actor, _ := identity(c)
	limit := queryInt(c, "limit", 0)

	entries, err := h.entries.RecentEntries(c.Request.Context(), actor.UserID, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type occurrenceResponse struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Description  string `json:"description"`
	At           string `json:"at"`
	RegisteredBy string `json:"registered_by,omitempty"`
}

func (h *Handler) listOccurrences(c *gin.Context) {
	limit := queryInt(c, "limit", 0)

	entries, err := h.entries.Occurrences(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]occurrenceResponse, 0, len(entries))
	for _, e := range entries {
		row := occurrenceResponse{
			ID:          e.ID,
			Username:    e.User.Username,
			Description: e.Description,
			At:          e.StartTime.Format("02/01/2006 15:04"),
		}
		if e.RegisteredBy != nil {
			row.RegisteredBy = e.RegisteredBy.Username
		}
		out = append(out, row)
	}

	c.JSON(http.StatusOK, gin.H{"occurrences": out})
}

func (h *Handler) teamStatus(c *gin.Context) {
	feed, err := h.status.TeamStatus(c.Request.Context(), h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": feed})
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
