package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/the-inv-riya/pixify/internal/core/billing"
)

// Settlement is the slice of the billing service the payment handlers use.
type Settlement interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID, planID string) (billing.CheckoutSession, error)
	VerifySettlement(ctx context.Context, sessionID string) (billing.Result, error)
}

type PaymentHandler struct {
	Billing Settlement
}

type createPaymentRequest struct {
	PlanID string `json:"planId"`
}

type verifyPaymentRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var req createPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	userID, err := authedUserID(c)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Not Authorized. Login Again"})
	}

	session, err := h.Billing.CreateCheckout(c.Context(), userID, req.PlanID)
	if errors.Is(err, billing.ErrInvalidRequest) {
		return c.JSON(fiber.Map{"success": false, "message": "Plan not found"})
	}
	if err != nil {
		slog.Error("payment creation failed", "error", err, "user_id", userID)
		return c.JSON(fiber.Map{"success": false, "message": "Could not start payment"})
	}

	return c.JSON(fiber.Map{"success": true, "sessionId": session.SessionID, "url": session.URL})
}

// VerifyPayment is deliberately unauthenticated: the user lands back from
// the hosted checkout page with only the session id. Validation and the
// not-found cases surface as distinct status codes; everything else is a
// uniform success=false body.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Session ID is required"})
	}

	result, err := h.Billing.VerifySettlement(c.Context(), req.SessionID)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": result.Settled, "message": result.Message})
	case errors.Is(err, billing.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Session ID is required"})
	case errors.Is(err, billing.ErrInvalidState):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid session metadata"})
	case errors.Is(err, billing.ErrTransactionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Transaction not found"})
	case errors.Is(err, billing.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	default:
		slog.Error("payment verification failed", "error", err, "session_id", req.SessionID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Payment verification failed"})
	}
}
