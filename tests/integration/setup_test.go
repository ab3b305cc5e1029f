package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"saku/internal/cache"
	"saku/internal/handlers"
	"saku/internal/logger"
	"saku/internal/middleware"
	"saku/internal/models"
	"saku/internal/services"
	"saku/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Pocket{},
		&models.Category{},
		&models.Record{},
		&models.CategoryBudget{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	timelineCache := cache.NewTimelineStore(64, time.Minute)
	userService := services.NewUserService(db)
	pocketService := services.NewPocketService(db)
	categoryService := services.NewCategoryService(db)
	timelineService := services.NewTimelineService(db, pocketService, timelineCache, 5*time.Second)
	recordService := services.NewRecordService(db, pocketService, timelineService)
	budgetService := services.NewBudgetService(db)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, pocketService)
	pocketHandler := handlers.NewPocketHandler(pocketService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	recordHandler := handlers.NewRecordHandler(recordService, auditService)
	timelineHandler := handlers.NewTimelineHandler(timelineService, pocketService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	pockets := protected.Group("/pockets")
	pockets.POST("", pocketHandler.CreatePocket)
	pockets.GET("", pocketHandler.GetPockets)
	pockets.GET("/:id", pocketHandler.GetPocketByID)
	pockets.PUT("/:id", pocketHandler.UpdatePocket)
	pockets.DELETE("/:id", pocketHandler.DeletePocket)
	pockets.GET("/:id/records", recordHandler.GetPocketRecords)
	pockets.GET("/:id/timeline", timelineHandler.GetTimeline)
	pockets.GET("/:id/timeline/export", timelineHandler.ExportTimeline)

	protected.GET("/balances", timelineHandler.GetBalances)

	records := protected.Group("/records")
	records.POST("/income", recordHandler.CreateIncome)
	records.POST("/expense", recordHandler.CreateExpense)
	records.POST("/transfer", recordHandler.CreateTransfer)
	records.POST("/transfer/check", recordHandler.CheckTransfer)
	records.GET("/:id", recordHandler.GetRecordByID)
	records.DELETE("/:id", recordHandler.DeleteRecord)

	protected.POST("/amounts/evaluate", recordHandler.EvaluateAmount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.PUT("/:id/budget", budgetHandler.SetBudget)
	categories.GET("/:id/budget", budgetHandler.GetBudget)
	categories.DELETE("/:id/budget", budgetHandler.DeleteBudget)
	categories.GET("/:id/budget/status", budgetHandler.GetCategoryStatus)
	protected.GET("/budgets/status", budgetHandler.GetAllStatuses)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string)
}

// pocketIDByName finds a pocket ID from the paginated pockets listing.
func (app *testApp) pocketIDByName(t *testing.T, token, name string) string {
	t.Helper()
	rec := app.request("GET", "/api/v1/pockets", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list pockets failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	items := result["data"].([]interface{})
	for _, raw := range items {
		p := raw.(map[string]interface{})
		if p["name"] == name {
			return p["id"].(string)
		}
	}
	t.Fatalf("pocket %q not found in listing", name)
	return ""
}
