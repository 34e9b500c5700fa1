package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	entity "garment.GO/model/entity"
)

func tokenServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.ApiToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	e := echo.New()
	e.Use(Middleware(db))
	e.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	})
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e, db
}

func get(e *echo.Echo, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenAuth_ResolvesUser(t *testing.T) {
	t.Setenv("AUTH_TYPE", "token")
	t.Setenv("API_KEY", "")
	e, db := tokenServer(t)
	if err := db.Create(&entity.ApiToken{UserID: "ana", Token: "tok-ana"}).Error; err != nil {
		t.Fatalf("seed token: %v", err)
	}

	rec := get(e, "/whoami", "tok-ana")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "ana" {
		t.Errorf("user = %q, want ana", rec.Body.String())
	}
}

func TestTokenAuth_RejectsRevokedAndUnknown(t *testing.T) {
	t.Setenv("AUTH_TYPE", "token")
	t.Setenv("API_KEY", "")
	e, db := tokenServer(t)
	if err := db.Create(&entity.ApiToken{UserID: "ana", Token: "tok-old", Revoked: 1}).Error; err != nil {
		t.Fatalf("seed token: %v", err)
	}

	if rec := get(e, "/whoami", "tok-old"); rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token status = %d, want 401", rec.Code)
	}
	if rec := get(e, "/whoami", "tok-nope"); rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown token status = %d, want 401", rec.Code)
	}
}

func TestTokenAuth_StaticKeyHasNoUser(t *testing.T) {
	t.Setenv("AUTH_TYPE", "token")
	t.Setenv("API_KEY", "master-key")
	e, _ := tokenServer(t)

	rec := get(e, "/whoami", "master-key")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "" {
		t.Errorf("user = %q, want empty for static key", rec.Body.String())
	}
}

func TestSkipper_HealthNeedsNoAuth(t *testing.T) {
	t.Setenv("AUTH_TYPE", "token")
	t.Setenv("API_KEY", "")
	e, _ := tokenServer(t)

	rec := get(e, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}
