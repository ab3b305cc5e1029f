package models

// PocketKind distinguishes the two built-in pockets from user-created ones.
type PocketKind string

const (
	PocketKindPrimary PocketKind = "primary"
	PocketKindCustom  PocketKind = "custom"
)

// Pocket represents a named bucket of money. Every user gets two primary
// pockets at registration; custom pockets can be created and deleted freely.
type Pocket struct {
	Base
	UserID          string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name            string     `gorm:"not null" json:"name"`
	Kind            PocketKind `gorm:"not null;default:'custom'" json:"kind"`
	Icon            string     `json:"icon"`
	Color           string     `json:"color"`
	DisplayOrder    int        `gorm:"column:sort_order;default:0" json:"display_order"`
	WishlistEnabled bool       `gorm:"default:false" json:"wishlist_enabled"`

	// OriginalAmount is the opening balance in minor units, set once when
	// the pocket is created. All balances are derived from it plus records.
	OriginalAmount int64  `gorm:"type:bigint;not null;default:0" json:"original_amount"`
	Currency       string `gorm:"not null;default:'IDR'" json:"currency"`

	Records []Record `gorm:"foreignKey:PocketID" json:"records,omitempty"`
}

// IsPrimary reports whether this is one of the built-in pockets.
func (p *Pocket) IsPrimary() bool { return p.Kind == PocketKindPrimary }
