package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/the-inv-riya/pixify/internal/adapter/middleware"
	"github.com/the-inv-riya/pixify/internal/core/domain"
	"github.com/the-inv-riya/pixify/internal/core/security"
)

type fakeUserStore struct {
	byID     map[uuid.UUID]*domain.User
	byEmail  map[string]*domain.User
	getCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[uuid.UUID]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (f *fakeUserStore) add(u *domain.User) {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, domain.ErrDuplicateEmail
	}
	u := &domain.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.add(u)
	return u, nil
}

func (f *fakeUserStore) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.getCalls++
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserStore) DebitImageCredit(ctx context.Context, id uuid.UUID) (int64, error) {
	u, ok := f.byID[id]
	if !ok || u.CreditBalance <= 0 {
		return 0, domain.ErrInsufficientCredits
	}
	u.CreditBalance--
	return u.CreditBalance, nil
}

type apiResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Token         string `json:"token"`
	Credits       int64  `json:"credits"`
	CreditBalance int64  `json:"creditBalance"`
	ResultImage   string `json:"resultImage"`
	SessionID     string `json:"sessionId"`
	URL           string `json:"url"`
	User          struct {
		Name string `json:"name"`
	} `json:"user"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, token string) (int, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("token", token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func newUserApp(store *fakeUserStore, tokens *security.TokenIssuer) *fiber.App {
	h := &UserHandler{Store: store, Tokens: tokens}
	app := fiber.New()
	app.Post("/api/user/register", h.Register)
	app.Post("/api/user/login", h.Login)
	app.Get("/api/user/credits", middleware.Protected(tokens), h.Credits)
	return app
}

func TestRegisterThenLogin(t *testing.T) {
	store := newFakeUserStore()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	app := newUserApp(store, tokens)

	status, reg := doJSON(t, app, http.MethodPost, "/api/user/register",
		fiber.Map{"name": "Asha", "email": "asha@example.com", "password": "hunter2"}, "")
	if status != http.StatusOK || !reg.Success {
		t.Fatalf("register = %d %+v", status, reg)
	}
	if reg.Token == "" || reg.User.Name != "Asha" {
		t.Fatalf("register response missing token or name: %+v", reg)
	}

	stored := store.byEmail["asha@example.com"]
	if stored.PasswordHash == "hunter2" {
		t.Fatal("raw password must never be stored")
	}

	_, login := doJSON(t, app, http.MethodPost, "/api/user/login",
		fiber.Map{"email": "asha@example.com", "password": "hunter2"}, "")
	if !login.Success || login.Token == "" {
		t.Fatalf("login = %+v", login)
	}
}

func TestLoginDoesNotRevealWhichCredentialFailed(t *testing.T) {
	store := newFakeUserStore()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	app := newUserApp(store, tokens)

	doJSON(t, app, http.MethodPost, "/api/user/register",
		fiber.Map{"name": "Asha", "email": "asha@example.com", "password": "hunter2"}, "")

	_, wrongPassword := doJSON(t, app, http.MethodPost, "/api/user/login",
		fiber.Map{"email": "asha@example.com", "password": "wrong"}, "")
	_, unknownEmail := doJSON(t, app, http.MethodPost, "/api/user/login",
		fiber.Map{"email": "nobody@example.com", "password": "hunter2"}, "")

	if wrongPassword.Success || unknownEmail.Success {
		t.Fatal("bad credentials must not log in")
	}
	if wrongPassword.Message != unknownEmail.Message {
		t.Errorf("messages differ (%q vs %q); they must not reveal which credential failed",
			wrongPassword.Message, unknownEmail.Message)
	}
}

func TestRegisterMissingDetails(t *testing.T) {
	store := newFakeUserStore()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	app := newUserApp(store, tokens)

	_, out := doJSON(t, app, http.MethodPost, "/api/user/register",
		fiber.Map{"name": "Asha"}, "")
	if out.Success || out.Message != "Missing Details" {
		t.Errorf("response = %+v, want Missing Details", out)
	}
	if len(store.byID) != 0 {
		t.Error("no user should be created")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	app := newUserApp(store, tokens)

	body := fiber.Map{"name": "Asha", "email": "asha@example.com", "password": "hunter2"}
	doJSON(t, app, http.MethodPost, "/api/user/register", body, "")
	_, out := doJSON(t, app, http.MethodPost, "/api/user/register", body, "")
	if out.Success {
		t.Fatal("duplicate registration must fail")
	}
	if len(store.byID) != 1 {
		t.Errorf("store has %d users, want 1", len(store.byID))
	}
}

func TestCreditsWithoutTokenReadsNothing(t *testing.T) {
	store := newFakeUserStore()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	app := newUserApp(store, tokens)

	_, out := doJSON(t, app, http.MethodGet, "/api/user/credits", nil, "")
	if out.Success {
		t.Fatal("credits without a token must fail")
	}
	if store.getCalls != 0 {
		t.Errorf("store was read %d times without authentication", store.getCalls)
	}
}

func TestCreditsReturnsBalance(t *testing.T) {
	store := newFakeUserStore()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	app := newUserApp(store, tokens)

	user := &domain.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", CreditBalance: 42}
	store.add(user)
	token, err := tokens.Issue(user.ID.String())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	_, out := doJSON(t, app, http.MethodGet, "/api/user/credits", nil, token)
	if !out.Success || out.Credits != 42 || out.User.Name != "Asha" {
		t.Errorf("credits response = %+v, want 42 for Asha", out)
	}
}

func TestCreditsVanishedUserIs404(t *testing.T) {
	store := newFakeUserStore()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	app := newUserApp(store, tokens)

	token, err := tokens.Issue(uuid.NewString())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	status, out := doJSON(t, app, http.MethodGet, "/api/user/credits", nil, token)
	if status != http.StatusNotFound || out.Success {
		t.Errorf("response = %d %+v, want 404 failure", status, out)
	}
}
