package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
)

// minPinLength PINs shorter than this are rejected
const minPinLength = 6

// PinController transaction PIN management
type PinController struct {
	store auth.PinStore
}

// NewPinController creates a PIN controller
func NewPinController(store auth.PinStore) *PinController {
	return &PinController{store: store}
}

// Set POST /api/v1/pin
func (c *PinController) Set(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req struct {
		Pin string `json:"pin" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Pin) < minPinLength {
		Error(ctx, http.StatusBadRequest, "invalid pin", "pin must be at least 6 characters")
		return
	}

	if err := c.store.Set(principal.ID, req.Pin); err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to store pin", detailOf(err))
		return
	}

	Success(ctx, nil)
}

// Verify POST /api/v1/pin/verify
func (c *PinController) Verify(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req struct {
		Pin string `json:"pin" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := c.store.Verify(principal.ID, req.Pin); err != nil {
		Error(ctx, http.StatusForbidden, T(ctx, "error.pin_mismatch"), "")
		return
	}

	Success(ctx, gin.H{"verified": true})
}
