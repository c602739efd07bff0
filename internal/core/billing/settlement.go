package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/the-inv-riya/pixify/internal/core/domain"
)

// Metadata keys attached to every checkout session. The gateway echoes
// them back verbatim on retrieval; they are the only link between a
// gateway session and local state.
const (
	MetaTransactionID = "transactionId"
	MetaUserID        = "userId"
	MetaCredits       = "credits"
)

var (
	// ErrInvalidRequest flags missing or malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidState flags gateway metadata that does not line up with
	// local records.
	ErrInvalidState = errors.New("invalid session metadata")
	// ErrGateway wraps failures talking to the payment processor.
	ErrGateway = errors.New("payment gateway error")
	// ErrAlreadySettled reports that a transaction's payment flag was
	// already set when Settle ran. Not a fault: repeated verification
	// calls are expected (page reloads, client retries).
	ErrAlreadySettled = errors.New("transaction already settled")

	ErrTransactionNotFound = fmt.Errorf("transaction %w", domain.ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", domain.ErrNotFound)
)

// CheckoutSession is what the client needs to reach the hosted page.
type CheckoutSession struct {
	SessionID string
	URL       string
}

// Session is the gateway's view of a checkout session after retrieval.
type Session struct {
	ID       string
	Paid     bool
	Metadata map[string]string
}

// Gateway creates and retrieves hosted checkout sessions.
type Gateway interface {
	CreateSession(ctx context.Context, plan domain.Plan, metadata map[string]string) (CheckoutSession, error)
	GetSession(ctx context.Context, id string) (Session, error)
}

// UserStore is the slice of user persistence settlement needs.
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// TransactionStore persists purchase records.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *domain.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// Settle flips the payment flag and credits the user as one atomic
	// conditional update. It returns ErrAlreadySettled when the flag was
	// already set, without touching the balance.
	Settle(ctx context.Context, txID, userID uuid.UUID, credits int64) error
}

// Result reports the outcome of one verification call. Settled is true
// only when this call applied the credits.
type Result struct {
	Settled bool
	Message string
}

// Service orchestrates checkout creation and settlement. All external
// integrations come in as capabilities so tests can substitute fakes.
type Service struct {
	users        UserStore
	transactions TransactionStore
	gateway      Gateway
}

func NewService(users UserStore, transactions TransactionStore, gateway Gateway) *Service {
	return &Service{users: users, transactions: transactions, gateway: gateway}
}

// CreateCheckout persists a pending transaction for the plan and opens a
// hosted checkout session for it. No credit is granted here.
func (s *Service) CreateCheckout(ctx context.Context, userID uuid.UUID, planID string) (CheckoutSession, error) {
	plan, ok := domain.PlanByID(planID)
	if !ok {
		return CheckoutSession{}, fmt.Errorf("%w: unknown plan %q", ErrInvalidRequest, planID)
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return CheckoutSession{}, fmt.Errorf("%w: unknown user", ErrInvalidRequest)
		}
		return CheckoutSession{}, fmt.Errorf("load user: %w", err)
	}

	t := &domain.Transaction{
		ID:      uuid.New(),
		UserID:  userID,
		Plan:    plan.ID,
		Credits: plan.Credits,
		Amount:  plan.Amount,
	}
	if err := s.transactions.CreateTransaction(ctx, t); err != nil {
		return CheckoutSession{}, fmt.Errorf("create transaction: %w", err)
	}

	metadata := map[string]string{
		MetaTransactionID: t.ID.String(),
		MetaUserID:        userID.String(),
		MetaCredits:       strconv.FormatInt(plan.Credits, 10),
	}
	session, err := s.gateway.CreateSession(ctx, plan, metadata)
	if err != nil {
		// The pending transaction is left behind on purpose: the gateway
		// holds no session for it, so it can never settle.
		slog.Error("checkout session creation failed", "transaction_id", t.ID, "error", err)
		return CheckoutSession{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	slog.Info("checkout session created", "session_id", session.SessionID, "plan", plan.ID, "user_id", userID)
	return session, nil
}

// VerifySettlement retrieves the session from the gateway and, when it
// was paid and the transaction is still pending, credits the user. A
// session that is unpaid or already settled yields Settled=false with a
// display message rather than an error.
func (s *Service) VerifySettlement(ctx context.Context, sessionID string) (Result, error) {
	if sessionID == "" {
		return Result{}, fmt.Errorf("%w: session id is required", ErrInvalidRequest)
	}

	session, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if !session.Paid {
		return Result{Settled: false, Message: "Payment not completed"}, nil
	}

	txID, err := uuid.Parse(session.Metadata[MetaTransactionID])
	if err != nil {
		return Result{}, fmt.Errorf("%w: bad transaction id", ErrInvalidState)
	}
	if _, err := uuid.Parse(session.Metadata[MetaUserID]); err != nil {
		return Result{}, fmt.Errorf("%w: bad user id", ErrInvalidState)
	}
	credits, err := strconv.ParseInt(session.Metadata[MetaCredits], 10, 64)
	if err != nil || credits <= 0 {
		return Result{}, fmt.Errorf("%w: bad credits value", ErrInvalidState)
	}

	t, err := s.transactions.GetTransaction(ctx, txID)
	if errors.Is(err, domain.ErrNotFound) {
		return Result{}, ErrTransactionNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("load transaction: %w", err)
	}
	if t.Payment {
		return Result{Settled: false, Message: "Payment already processed"}, nil
	}

	user, err := s.users.GetUser(ctx, t.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return Result{}, ErrUserNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("load user: %w", err)
	}

	// The flag check above is only a fast path; Settle re-checks it
	// atomically so two concurrent calls cannot both credit.
	err = s.transactions.Settle(ctx, t.ID, user.ID, t.Credits)
	if errors.Is(err, ErrAlreadySettled) {
		return Result{Settled: false, Message: "Payment already processed"}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("settle transaction: %w", err)
	}

	slog.Info("credits settled", "transaction_id", t.ID, "user_id", user.ID, "credits", t.Credits)
	return Result{Settled: true, Message: "Credits Added Successfully!"}, nil
}
