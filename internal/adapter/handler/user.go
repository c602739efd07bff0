package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/the-inv-riya/pixify/internal/core/domain"
	"github.com/the-inv-riya/pixify/internal/core/security"
)

// UserStore is the user persistence the account handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type UserHandler struct {
	Store  UserStore
	Tokens *security.TokenIssuer
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(fiber.Map{"success": false, "message": "Missing Details"})
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		slog.Error("password hashing failed", "error", err)
		return c.JSON(fiber.Map{"success": false, "message": "Could not create account"})
	}

	user, err := h.Store.CreateUser(c.Context(), req.Name, req.Email, hash)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return c.JSON(fiber.Map{"success": false, "message": "Email already registered"})
	}
	if err != nil {
		slog.Error("failed to create user", "error", err)
		return c.JSON(fiber.Map{"success": false, "message": "Could not create account"})
	}

	token, err := h.Tokens.Issue(user.ID.String())
	if err != nil {
		slog.Error("token signing failed", "error", err, "user_id", user.ID)
		return c.JSON(fiber.Map{"success": false, "message": "Could not create account"})
	}

	slog.Info("user registered", "user_id", user.ID)
	return c.JSON(fiber.Map{"success": true, "token": token, "user": fiber.Map{"name": user.Name}})
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(fiber.Map{"success": false, "message": "Missing Details"})
	}

	// One generic message for both unknown email and wrong password, so
	// responses don't reveal which emails are registered.
	user, err := h.Store.GetUserByEmail(c.Context(), req.Email)
	if err != nil || !security.CheckPassword(user.PasswordHash, req.Password) {
		return c.JSON(fiber.Map{"success": false, "message": "Invalid credentials"})
	}

	token, err := h.Tokens.Issue(user.ID.String())
	if err != nil {
		slog.Error("token signing failed", "error", err, "user_id", user.ID)
		return c.JSON(fiber.Map{"success": false, "message": "Could not log in"})
	}

	return c.JSON(fiber.Map{"success": true, "token": token, "user": fiber.Map{"name": user.Name}})
}

func (h *UserHandler) Credits(c *fiber.Ctx) error {
	userID, err := authedUserID(c)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Not Authorized. Login Again"})
	}

	user, err := h.Store.GetUser(c.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}
	if err != nil {
		slog.Error("failed to load user", "error", err, "user_id", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Could not fetch credits"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"credits": user.CreditBalance,
		"user":    fiber.Map{"name": user.Name},
	})
}

// authedUserID reads the user id the auth middleware left in locals.
func authedUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, _ := c.Locals("userId").(string)
	return uuid.Parse(id)
}
