package delivery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	entity "garment.GO/model/entity"
)

func testServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Store{}, &entity.Supplier{}, &entity.GarmentType{},
		&entity.Order{}, &entity.OrderLine{}, &entity.Delivery{},
		&entity.LedgerAudit{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := echo.New()
	RegisterDeliveryRoutes(e.Group("/api"), db)
	return e, db
}

func seedLine(t *testing.T, db *gorm.DB, initial, remaining int) *entity.OrderLine {
	t.Helper()
	store := entity.Store{Name: "Downtown"}
	supplier := entity.Supplier{Name: "Textil Norte"}
	gtype := entity.GarmentType{Name: "T-Shirt"}
	for _, m := range []interface{}{&store, &supplier, &gtype} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed ref: %v", err)
		}
	}
	order := entity.Order{StoreID: store.ID, SupplierID: supplier.ID}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	line := entity.OrderLine{
		OrderID:       order.ID,
		GarmentTypeID: gtype.ID,
		InitialQty:    initial,
		RemainingQty:  remaining,
		UnitPrice:     decimal.NewFromFloat(19.90),
		Color:         "navy",
	}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("seed line: %v", err)
	}
	return &line
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPostDelivery_RecordsAndDecrements(t *testing.T) {
	e, db := testServer(t)
	line := seedLine(t, db, 10, 10)

	rec := doJSON(e, http.MethodPost, "/api/deliveries",
		fmt.Sprintf(`{"line_id":%d,"quantity":4,"user_id":"ana"}`, line.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var d entity.Delivery
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Quantity != 4 || d.UserID != "ana" {
		t.Errorf("delivery = %+v", d)
	}

	var reloaded entity.OrderLine
	if err := db.First(&reloaded, line.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.RemainingQty != 6 {
		t.Errorf("remaining = %d, want 6", reloaded.RemainingQty)
	}
}

func TestPostDelivery_ErrorMapping(t *testing.T) {
	e, db := testServer(t)
	line := seedLine(t, db, 10, 3)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"invalid quantity", fmt.Sprintf(`{"line_id":%d,"quantity":0}`, line.ID), http.StatusBadRequest},
		{"unknown line", `{"line_id":9999,"quantity":1}`, http.StatusNotFound},
		{"insufficient", fmt.Sprintf(`{"line_id":%d,"quantity":5}`, line.ID), http.StatusConflict},
	}
	for _, tc := range cases {
		rec := doJSON(e, http.MethodPost, "/api/deliveries", tc.body)
		if rec.Code != tc.code {
			t.Errorf("%s: status = %d, want %d (body %s)", tc.name, rec.Code, tc.code, rec.Body.String())
		}
	}
}

func TestPostDelivery_InsufficientCarriesRemaining(t *testing.T) {
	e, db := testServer(t)
	line := seedLine(t, db, 10, 3)

	rec := doJSON(e, http.MethodPost, "/api/deliveries",
		fmt.Sprintf(`{"line_id":%d,"quantity":5}`, line.ID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Remaining int `json:"remaining"`
		Requested int `json:"requested"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Remaining != 3 || body.Requested != 5 {
		t.Errorf("body = %+v", body)
	}
}

func TestDeleteDelivery_RestoresAndThen404(t *testing.T) {
	e, db := testServer(t)
	line := seedLine(t, db, 10, 10)

	rec := doJSON(e, http.MethodPost, "/api/deliveries",
		fmt.Sprintf(`{"line_id":%d,"quantity":4}`, line.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var d entity.Delivery
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/deliveries/%d", d.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	var reloaded entity.OrderLine
	if err := db.First(&reloaded, line.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.RemainingQty != 10 {
		t.Errorf("remaining = %d, want 10", reloaded.RemainingQty)
	}

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/deliveries/%d", d.ID), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestDeleteDelivery_RestoreFailureIsFlagged(t *testing.T) {
	e, db := testServer(t)
	// An orphan ledger row whose quantity was never taken off the line:
	// restoring it would overfill, so cancellation must fail loudly.
	line := seedLine(t, db, 10, 10)
	d := entity.Delivery{Quantity: 5, OrderLineID: line.ID, UserID: "ana"}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("seed delivery: %v", err)
	}

	rec := doJSON(e, http.MethodDelete, fmt.Sprintf("/api/deliveries/%d", d.ID), "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		ManualCorrection bool `json:"manual_correction_required"`
		LineID           uint `json:"line_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.ManualCorrection || body.LineID != line.ID {
		t.Errorf("body = %+v", body)
	}
}

func TestPatchDelivery_AdjustsQuantity(t *testing.T) {
	e, db := testServer(t)
	line := seedLine(t, db, 10, 10)

	rec := doJSON(e, http.MethodPost, "/api/deliveries",
		fmt.Sprintf(`{"line_id":%d,"quantity":3}`, line.ID))
	var d entity.Delivery
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec = doJSON(e, http.MethodPatch, fmt.Sprintf("/api/deliveries/%d", d.ID), `{"quantity":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var reloaded entity.OrderLine
	if err := db.First(&reloaded, line.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.RemainingQty != 5 {
		t.Errorf("remaining = %d, want 5", reloaded.RemainingQty)
	}
}

func TestGetDeliveries_FilterByLine(t *testing.T) {
	e, db := testServer(t)
	line := seedLine(t, db, 10, 10)
	other := seedLine(t, db, 5, 5)

	for _, q := range []int{2, 3} {
		doJSON(e, http.MethodPost, "/api/deliveries", fmt.Sprintf(`{"line_id":%d,"quantity":%d}`, line.ID, q))
	}
	doJSON(e, http.MethodPost, "/api/deliveries", fmt.Sprintf(`{"line_id":%d,"quantity":1}`, other.ID))

	rec := doJSON(e, http.MethodGet, fmt.Sprintf("/api/deliveries?line_id=%d", line.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out []entity.Delivery
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("ledger entries = %d, want 2", len(out))
	}

	rec = doJSON(e, http.MethodGet, "/api/deliveries", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal all: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("all deliveries = %d, want 3", len(out))
	}
}
