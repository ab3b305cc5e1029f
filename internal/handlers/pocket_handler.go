package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "saku/internal/errors"
	"saku/internal/pagination"
	"saku/internal/services"
)

// PocketHandler handles pocket-related requests.
type PocketHandler struct {
	pocketService services.PocketServicer
	auditService  services.AuditServicer
}

// NewPocketHandler creates a new PocketHandler.
func NewPocketHandler(pocketService services.PocketServicer, auditService services.AuditServicer) *PocketHandler {
	return &PocketHandler{pocketService: pocketService, auditService: auditService}
}

// CreatePocketRequest represents the request payload for creating a pocket
type CreatePocketRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Icon            string `json:"icon" binding:"max=50"`
	Color           string `json:"color" binding:"omitempty,hex_color"`
	Currency        string `json:"currency" binding:"omitempty,iso4217"`
	OriginalAmount  int64  `json:"original_amount" binding:"omitempty,gte=0"`
	WishlistEnabled bool   `json:"wishlist_enabled"`
}

// UpdatePocketRequest represents the request payload for updating a pocket
type UpdatePocketRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=100"`
	Icon            *string `json:"icon" binding:"omitempty,max=50"`
	Color           *string `json:"color" binding:"omitempty,hex_color"`
	DisplayOrder    *int    `json:"display_order" binding:"omitempty,gte=0"`
	WishlistEnabled *bool   `json:"wishlist_enabled"`
}

// CreatePocket handles the creation of a new custom pocket
// @Summary     Create a pocket
// @Description Create a new custom pocket with an optional opening amount
// @Tags        pockets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePocketRequest true "Pocket details"
// @Success     201 {object} models.Pocket "Pocket created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pockets [post]
func (h *PocketHandler) CreatePocket(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePocketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	pocket, err := h.pocketService.CreatePocket(userID, req.Name, req.Icon, req.Color, req.Currency, req.OriginalAmount, req.WishlistEnabled)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_POCKET", "pocket", pocket.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "original_amount": req.OriginalAmount})

	c.JSON(http.StatusCreated, gin.H{"pocket": pocket})
}

// GetPockets handles the retrieval of the user's pockets
// @Summary     List pockets
// @Description Get a paginated list of the user's pockets in display order
// @Tags        pockets
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Pocket] "Paginated pockets"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pockets [get]
func (h *PocketHandler) GetPockets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.pocketService.GetUserPockets(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPocketByID handles the retrieval of a single pocket
// @Summary     Get pocket by ID
// @Tags        pockets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Pocket ID"
// @Success     200 {object} models.Pocket "Pocket details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Router      /pockets/{id} [get]
func (h *PocketHandler) GetPocketByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	pocket, err := h.pocketService.GetPocketByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pocket": pocket})
}

// UpdatePocket handles partial updates of a pocket
// @Summary     Update a pocket
// @Tags        pockets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Pocket ID"
// @Param       request body UpdatePocketRequest true "Fields to update"
// @Success     200 {object} models.Pocket "Pocket updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Router      /pockets/{id} [patch]
func (h *PocketHandler) UpdatePocket(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePocketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	pocket, err := h.pocketService.UpdatePocket(userID, c.Param("id"), services.PocketUpdateFields{
		Name:            req.Name,
		Icon:            req.Icon,
		Color:           req.Color,
		DisplayOrder:    req.DisplayOrder,
		WishlistEnabled: req.WishlistEnabled,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pocket": pocket})
}

// DeletePocket handles the deletion of a custom pocket
// @Summary     Delete a pocket
// @Description Delete a custom pocket; primary pockets cannot be deleted
// @Tags        pockets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Pocket ID"
// @Success     204 "Pocket deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Failure     409 {object} ErrorResponse "Primary pocket"
// @Router      /pockets/{id} [delete]
func (h *PocketHandler) DeletePocket(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	pocketID := c.Param("id")
	if err := h.pocketService.DeletePocket(userID, pocketID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_POCKET", "pocket", pocketID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
