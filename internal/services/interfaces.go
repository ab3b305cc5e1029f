package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"saku/internal/ledger"
	"saku/internal/models"
	"saku/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// PocketServicer defines the contract for pocket-related business logic.
type PocketServicer interface {
	CreateDefaultPockets(userID, currency string) error
	CreatePocket(userID, name, icon, color, currency string, originalAmount int64, wishlistEnabled bool) (*models.Pocket, error)
	GetUserPockets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Pocket], error)
	GetPocketByID(userID, pocketID string) (*models.Pocket, error)
	UpdatePocket(userID, pocketID string, fields PocketUpdateFields) (*models.Pocket, error)
	DeletePocket(userID, pocketID string) error
}

// PocketUpdateFields holds optional pocket fields for partial updates.
type PocketUpdateFields struct {
	Name            *string
	Icon            *string
	Color           *string
	DisplayOrder    *int
	WishlistEnabled *bool
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, kind models.CategoryKind, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetUserCategoriesByKind(userID string, kind models.CategoryKind, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// RecordFilter holds optional filter parameters for listing records.
type RecordFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Kind       *models.RecordKind
	CategoryID *string
	MinAmount  *int64
	MaxAmount  *int64
}

// IncomeInput holds the parameters for creating an income record. When
// SourceCurrency differs from the pocket's currency, Amount is minor units
// of the source currency and is converted at ExchangeRate on creation.
type IncomeInput struct {
	PocketID       string
	CategoryID     *string
	Amount         int64
	Deduction      int64
	Note           string
	Date           time.Time
	SourceCurrency string
	ExchangeRate   float64
}

// ExpenseInput holds the parameters for creating an expense record.
type ExpenseInput struct {
	PocketID   string
	CategoryID *string
	Amount     int64
	Note       string
	Date       time.Time
}

// TransferInput holds the parameters for creating a transfer record.
type TransferInput struct {
	FromPocketID string
	ToPocketID   string
	Amount       int64
	Note         string
	Date         time.Time
}

// TransferPreview is the result of a pre-submit transfer check.
type TransferPreview struct {
	Allowed       bool                        `json:"allowed"`
	Available     int64                       `json:"available"`
	Insufficiency *ledger.InsufficientBalance `json:"insufficiency,omitempty"`
}

// RecordServicer defines the contract for record-related business logic.
type RecordServicer interface {
	CreateIncome(ctx context.Context, userID string, in IncomeInput) (*models.Record, error)
	CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Record, error)
	CreateTransfer(ctx context.Context, userID string, in TransferInput) (*models.Record, error)
	PreviewTransfer(ctx context.Context, userID string, in TransferInput) (*TransferPreview, error)
	GetPocketRecords(userID, pocketID string, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.Record], error)
	GetRecordByID(userID, recordID string) (*models.Record, error)
	DeleteRecord(userID, recordID string) error
}

// BalanceView pairs a pocket with its two balance figures for list screens.
type BalanceView struct {
	PocketID string `json:"pocket_id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	// Projected includes every entry of the month, future-dated ones too.
	Projected int64 `json:"projected"`
	// Realtime counts only entries dated today or earlier.
	Realtime int64 `json:"realtime"`
}

// TimelineServicer defines the contract for building monthly timelines and
// the balances derived from them.
type TimelineServicer interface {
	GetTimeline(ctx context.Context, userID, pocketID string, month ledger.MonthKey) (*ledger.Timeline, error)
	GetBalances(ctx context.Context, userID string, month ledger.MonthKey) ([]BalanceView, error)
	AvailableBalance(ctx context.Context, userID, pocketID string) (int64, error)
	// FreshAvailable recomputes the spendable balance inside the caller's
	// database transaction, bypassing the cache. Used on commit paths.
	FreshAvailable(tx *gorm.DB, pocketID string, asOf time.Time) (int64, error)
	Invalidate(pocketID string)
}

// CategoryStatus reports budget consumption for one category.
type CategoryStatus struct {
	CategoryID  string              `json:"category_id"`
	Limit       int64               `json:"limit"`
	Spent       int64               `json:"spent"`
	Remaining   int64               `json:"remaining"`
	Percentage  float64             `json:"percentage"`
	Status      ledger.BudgetStatus `json:"status"`
	Unlimited   bool                `json:"unlimited"`
	PeriodStart time.Time           `json:"period_start"`
}

// BudgetServicer defines the contract for category budget business logic.
type BudgetServicer interface {
	SetBudget(userID, categoryID string, limitAmount int64, warningAt, resetDay int, enabled bool) (*models.CategoryBudget, error)
	GetBudget(userID, categoryID string) (*models.CategoryBudget, error)
	DeleteBudget(userID, categoryID string) error
	GetCategoryStatus(userID, categoryID string, asOf time.Time) (*CategoryStatus, error)
	GetAllStatuses(userID string, asOf time.Time) ([]CategoryStatus, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
