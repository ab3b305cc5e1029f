package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// createPocket creates a custom pocket with an opening amount and returns its ID.
func (app *testApp) createPocket(t *testing.T, token, name string, originalAmount int64) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/pockets",
		fmt.Sprintf(`{"name":%q,"original_amount":%d}`, name, originalAmount), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create pocket failed: %d %s", rec.Code, rec.Body.String())
	}
	pocket := parseJSON(t, rec)["pocket"].(map[string]interface{})
	return pocket["id"].(string)
}

// projectedBalance reads one pocket's projected balance from the balances view.
func (app *testApp) projectedBalance(t *testing.T, token, name string) float64 {
	t.Helper()
	rec := app.request("GET", "/api/v1/balances", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("balances failed: %d %s", rec.Code, rec.Body.String())
	}
	for _, raw := range parseJSON(t, rec)["balances"].([]interface{}) {
		b := raw.(map[string]interface{})
		if b["name"] == name {
			return b["projected"].(float64)
		}
	}
	t.Fatalf("pocket %q not in balances view", name)
	return 0
}

func TestTransferFlow_DeleteRestoresBalances(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "xfer@test.com", "password123")

	// Pocket A with 20000, pocket B with 5000.
	pocketA := app.createPocket(t, token, "Pocket A", 20000)
	pocketB := app.createPocket(t, token, "Pocket B", 5000)

	// Transfer 7500 from A to B.
	rec := app.request("POST", "/api/v1/records/transfer",
		fmt.Sprintf(`{"from_pocket_id":%q,"to_pocket_id":%q,"amount":7500,"note":"rent money"}`, pocketA, pocketB), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	xfer := parseJSON(t, rec)["record"].(map[string]interface{})
	xferID := xfer["id"].(string)

	if got := app.projectedBalance(t, token, "Pocket A"); got != 12500 {
		t.Errorf("expected Pocket A balance 12500, got %v", got)
	}
	if got := app.projectedBalance(t, token, "Pocket B"); got != 12500 {
		t.Errorf("expected Pocket B balance 12500, got %v", got)
	}

	// Delete the transfer; both balances rebuild.
	rec = app.request("DELETE", "/api/v1/records/"+xferID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d: %s", rec.Code, rec.Body.String())
	}

	if got := app.projectedBalance(t, token, "Pocket A"); got != 20000 {
		t.Errorf("expected Pocket A balance 20000 after delete, got %v", got)
	}
	if got := app.projectedBalance(t, token, "Pocket B"); got != 5000 {
		t.Errorf("expected Pocket B balance 5000 after delete, got %v", got)
	}
}

func TestTransferFlow_SamePocketRejected(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "same@test.com", "password123")

	pocket := app.createPocket(t, token, "Only Pocket", 10000)

	rec := app.request("POST", "/api/v1/records/transfer",
		fmt.Sprintf(`{"from_pocket_id":%q,"to_pocket_id":%q,"amount":1000}`, pocket, pocket), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "SAME_POCKET_TRANSFER" {
		t.Errorf("expected SAME_POCKET_TRANSFER, got %v", errObj["code"])
	}
}

func TestTransferFlow_ExactBalanceAccepted(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "exact@test.com", "password123")

	pocketA := app.createPocket(t, token, "Exact A", 1000)
	pocketB := app.createPocket(t, token, "Exact B", 0)

	// Moving the entire balance is allowed; equality is not insufficiency.
	rec := app.request("POST", "/api/v1/records/transfer",
		fmt.Sprintf(`{"from_pocket_id":%q,"to_pocket_id":%q,"amount":1000}`, pocketA, pocketB), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if got := app.projectedBalance(t, token, "Exact A"); got != 0 {
		t.Errorf("expected Exact A balance 0, got %v", got)
	}
}

func TestTransferFlow_MultipleTransfersConserveTotal(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "multi@test.com", "password123")

	pocketA := app.createPocket(t, token, "A", 10000)
	pocketB := app.createPocket(t, token, "B", 5000)
	pocketC := app.createPocket(t, token, "C", 0)

	// A -> B: 3000
	rec := app.request("POST", "/api/v1/records/transfer",
		fmt.Sprintf(`{"from_pocket_id":%q,"to_pocket_id":%q,"amount":3000}`, pocketA, pocketB), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("A->B failed: %d %s", rec.Code, rec.Body.String())
	}

	// B -> C: 6000 (5000 + 3000 covers it)
	rec = app.request("POST", "/api/v1/records/transfer",
		fmt.Sprintf(`{"from_pocket_id":%q,"to_pocket_id":%q,"amount":6000}`, pocketB, pocketC), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("B->C failed: %d %s", rec.Code, rec.Body.String())
	}

	if got := app.projectedBalance(t, token, "A"); got != 7000 {
		t.Errorf("expected A=7000, got %v", got)
	}
	if got := app.projectedBalance(t, token, "B"); got != 2000 {
		t.Errorf("expected B=2000, got %v", got)
	}
	if got := app.projectedBalance(t, token, "C"); got != 6000 {
		t.Errorf("expected C=6000, got %v", got)
	}
}

func TestTimelineExport_ReturnsWorkbook(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "export@test.com", "password123")

	pocket := app.createPocket(t, token, "Export Pocket", 10000)

	rec := app.request("GET", "/api/v1/pockets/"+pocket+"/timeline/export", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("export failed: %d %s", rec.Code, rec.Body.String())
	}
	ct := rec.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty workbook body")
	}
}
