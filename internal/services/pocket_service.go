package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "saku/internal/errors"
	"saku/internal/models"
	"saku/internal/pagination"
)

// defaultPockets are created for every user at registration. Their order
// here fixes their display order.
var defaultPockets = []string{"daily", "cold money"}

// pocketService handles pocket-related business logic.
type pocketService struct {
	db *gorm.DB
}

// NewPocketService creates a new PocketServicer.
func NewPocketService(db *gorm.DB) PocketServicer {
	return &pocketService{db: db}
}

// CreateDefaultPockets creates the two primary pockets for a new user.
// It is idempotent: pockets that already exist are left untouched.
func (s *pocketService) CreateDefaultPockets(userID, currency string) error {
	if currency == "" {
		currency = "IDR"
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i, name := range defaultPockets {
			var count int64
			if err := tx.Model(&models.Pocket{}).
				Where("user_id = ? AND name = ? AND kind = ?", userID, name, models.PocketKindPrimary).
				Count(&count).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if count > 0 {
				continue
			}

			pocket := &models.Pocket{
				UserID:       userID,
				Name:         name,
				Kind:         models.PocketKindPrimary,
				DisplayOrder: i,
				Currency:     currency,
			}
			if err := tx.Create(pocket).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
}

// CreatePocket creates a new custom pocket for a user
func (s *pocketService) CreatePocket(userID, name, icon, color, currency string, originalAmount int64, wishlistEnabled bool) (*models.Pocket, error) {
	// Validate input
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "pocket name is required")
	}
	if originalAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "original amount cannot be negative")
	}

	if currency == "" {
		currency = "IDR"
	}

	// New pockets go after existing ones
	var maxOrder int
	if err := s.db.Model(&models.Pocket{}).
		Select("COALESCE(MAX(sort_order), -1)").
		Where("user_id = ?", userID).
		Scan(&maxOrder).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	pocket := &models.Pocket{
		UserID:          userID,
		Name:            name,
		Kind:            models.PocketKindCustom,
		Icon:            icon,
		Color:           color,
		DisplayOrder:    maxOrder + 1,
		WishlistEnabled: wishlistEnabled,
		OriginalAmount:  originalAmount,
		Currency:        currency,
	}

	if err := s.db.Create(pocket).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return pocket, nil
}

// GetUserPockets retrieves a paginated list of pockets for a user.
func (s *pocketService) GetUserPockets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Pocket], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Pocket{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var pockets []models.Pocket
	if err := base.Scopes(pagination.Paginate(page)).
		Order("sort_order ASC").
		Find(&pockets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(pockets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPocketByID retrieves a pocket by ID for a specific user
func (s *pocketService) GetPocketByID(userID, pocketID string) (*models.Pocket, error) {
	var pocket models.Pocket
	if err := s.db.Where("id = ? AND user_id = ?", pocketID, userID).First(&pocket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPocketNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &pocket, nil
}

// UpdatePocket updates an existing pocket. Only provided fields are applied.
func (s *pocketService) UpdatePocket(userID, pocketID string, fields PocketUpdateFields) (*models.Pocket, error) {
	pocket, err := s.GetPocketByID(userID, pocketID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Icon != nil {
		updates["icon"] = *fields.Icon
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}
	if fields.DisplayOrder != nil {
		updates["sort_order"] = *fields.DisplayOrder
	}
	if fields.WishlistEnabled != nil {
		updates["wishlist_enabled"] = *fields.WishlistEnabled
	}

	if len(updates) > 0 {
		if err := s.db.Model(pocket).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Reload to get fresh data
		if err := s.db.Where("id = ?", pocket.ID).First(pocket).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return pocket, nil
}

// DeletePocket soft-deletes a custom pocket. Primary pockets cannot be
// deleted. Records referencing the pocket are kept for history.
func (s *pocketService) DeletePocket(userID, pocketID string) error {
	pocket, err := s.GetPocketByID(userID, pocketID)
	if err != nil {
		return err
	}

	if pocket.IsPrimary() {
		return apperrors.ErrPrimaryImmutable
	}

	if err := s.db.Delete(pocket).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
