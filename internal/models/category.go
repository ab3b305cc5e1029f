package models

// CategoryKind represents the kind of category
type CategoryKind string

const (
	CategoryKindIncome  CategoryKind = "income"
	CategoryKindExpense CategoryKind = "expense"
)

// Category represents a record category
type Category struct {
	Base
	UserID string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string       `gorm:"not null" json:"name"`
	Kind   CategoryKind `gorm:"not null" json:"kind"`
	Icon   string       `json:"icon"`
	Color  string       `json:"color"`

	Records []Record        `gorm:"foreignKey:CategoryID" json:"records,omitempty"`
	Budget  *CategoryBudget `gorm:"foreignKey:CategoryID" json:"budget,omitempty"`
}
