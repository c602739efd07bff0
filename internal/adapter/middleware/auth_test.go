package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/the-inv-riya/pixify/internal/core/security"
)

func probeApp(tokens *security.TokenIssuer) *fiber.App {
	app := fiber.New()
	app.Get("/protected", Protected(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "userId": c.Locals("userId")})
	})
	return app
}

func getProtected(t *testing.T, app *fiber.App, token string) (bool, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("token", token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		Success bool   `json:"success"`
		UserID  string `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out.Success, out.UserID
}

func TestProtectedPassesValidToken(t *testing.T) {
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	token, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	ok, userID := getProtected(t, probeApp(tokens), token)
	if !ok || userID != "user-123" {
		t.Errorf("got (%v, %q), want authenticated user-123", ok, userID)
	}
}

func TestProtectedRejectsBadTokens(t *testing.T) {
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	foreign, _ := security.NewTokenIssuer("other-secret", time.Hour).Issue("user-123")

	cases := map[string]string{
		"missing header":  "",
		"garbage":         "not-a-jwt",
		"foreign secret":  foreign,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			ok, _ := getProtected(t, probeApp(tokens), token)
			if ok {
				t.Error("request must be rejected")
			}
		})
	}
}
