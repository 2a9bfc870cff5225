package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"team-portal/internal/models"
	"team-portal/internal/service"
)

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) listOrders(c *gin.Context) {
	actor, _ := identity(c)

	var (
		orders []*models.ServiceOrder
		err    error
	)
	if c.Query("open") == "true" {
		orders, err = h.orders.ListOpen(c.Request.Context(), actor, queryInt(c, "limit", 0))
	} else {
		orders, err = h.orders.List(c.Request.Context(), actor)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) createOrder(c *gin.Context) {
	actor, _ := identity(c)

	var req service.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) getOrder(c *gin.Context) {
	actor, _ := identity(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) changeOrderStatus(c *gin.Context) {
	actor, _ := identity(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.ChangeStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
