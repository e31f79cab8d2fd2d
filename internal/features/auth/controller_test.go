package auth

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/config"
	"go-helpdesk/pkg/utils"
)

func newTestApp(environment string) *fiber.App {
	utils.SetSecret("test-secret")
	app := fiber.New()
	NewApi(NewController(&config.Config{Environment: environment})).Setup(app)
	return app
}

func TestDevTokenIssuesValidClaims(t *testing.T) {
	app := newTestApp("development")

	body, err := json.Marshal(DevTokenRequest{
		WorkspaceID: "ws-1",
		Roles:       []string{"agent"},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/auth/dev-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	var out struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	claims, err := utils.ValidateToken(out.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.WorkspaceID != "ws-1" {
		t.Errorf("WorkspaceID = %q, want %q", claims.WorkspaceID, "ws-1")
	}
	if claims.UserID != out.UserID {
		t.Errorf("UserID = %q, want %q", claims.UserID, out.UserID)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "agent" {
		t.Errorf("Roles = %v, want [agent]", claims.Roles)
	}
}

func TestDevTokenRejectsBadUserID(t *testing.T) {
	app := newTestApp("development")

	body, _ := json.Marshal(DevTokenRequest{UserID: "not-an-object-id"})
	req := httptest.NewRequest("POST", "/api/auth/dev-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
}

func TestDevTokenHiddenInProduction(t *testing.T) {
	app := newTestApp("production")

	req := httptest.NewRequest("POST", "/api/auth/dev-token", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusNotFound)
	}
}
