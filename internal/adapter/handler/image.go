package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/the-inv-riya/pixify/internal/core/domain"
)

// Generator renders an image for a text prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageUserStore is the user persistence image generation needs.
type ImageUserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	DebitImageCredit(ctx context.Context, id uuid.UUID) (int64, error)
}

type ImageHandler struct {
	Store  ImageUserStore
	Images Generator
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
}

func (h *ImageHandler) GenerateImage(c *fiber.Ctx) error {
	var req generateImageRequest
	if err := c.BodyParser(&req); err != nil || req.Prompt == "" {
		return c.JSON(fiber.Map{"success": false, "message": "Missing Details"})
	}

	userID, err := authedUserID(c)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Not Authorized. Login Again"})
	}

	user, err := h.Store.GetUser(c.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(fiber.Map{"success": false, "message": "User not found"})
	}
	if err != nil {
		slog.Error("failed to load user", "error", err, "user_id", userID)
		return c.JSON(fiber.Map{"success": false, "message": "Image generation failed"})
	}
	if user.CreditBalance <= 0 {
		// No external call when there is nothing to spend.
		return c.JSON(fiber.Map{"success": false, "message": "No Credit Balance", "creditBalance": user.CreditBalance})
	}

	image, err := h.Images.Generate(c.Context(), req.Prompt)
	if err != nil {
		slog.Error("image generation failed", "error", err, "user_id", userID)
		return c.JSON(fiber.Map{"success": false, "message": "Image generation failed"})
	}

	balance, err := h.Store.DebitImageCredit(c.Context(), userID)
	if errors.Is(err, domain.ErrInsufficientCredits) {
		// Lost a race against another generation call; the balance hit
		// zero after our pre-check.
		return c.JSON(fiber.Map{"success": false, "message": "No Credit Balance", "creditBalance": 0})
	}
	if err != nil {
		slog.Error("credit debit failed", "error", err, "user_id", userID)
		return c.JSON(fiber.Map{"success": false, "message": "Image generation failed"})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "Image Generated",
		"creditBalance": balance,
		"resultImage":   image,
	})
}
