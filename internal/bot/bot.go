// Package bot implements the conversational intake engine: command routing,
// account-link gating, and the multi-step goal-creation dialogue. It
// consumes the goal store and identity store through narrow interfaces and
// sends replies through the transport's message sender.
package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alekspetrov/goaltrack/internal/identity"
	"github.com/alekspetrov/goaltrack/internal/logging"
	"github.com/alekspetrov/goaltrack/internal/storage"
	"github.com/alekspetrov/goaltrack/internal/telegram"
)

// Sender dispatches outbound replies. Satisfied by *telegram.Client.
// Delivery is best-effort: failures are logged and never halt processing.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Store is the goal-domain store consumed by the engine. Satisfied by
// *storage.Store.
type Store interface {
	ListBoards(ctx context.Context, accountID int64) ([]storage.Board, error)
	ListCategories(ctx context.Context, accountID int64) ([]storage.Category, error)
	ListGoals(ctx context.Context, accountID int64) ([]storage.Goal, error)
	GetOwnedCategory(ctx context.Context, accountID, categoryID int64) (*storage.Category, error)
	CreateGoal(ctx context.Context, goal storage.NewGoal) (*storage.Goal, error)
}

// IdentityStore resolves Telegram users to linked identities. Satisfied by
// *identity.Store.
type IdentityStore interface {
	GetOrCreate(ctx context.Context, userID, chatID int64, username string) (*identity.Identity, bool, error)
	SetVerificationCode(ctx context.Context, userID int64, code string) error
}

// Handler routes inbound messages to query handlers and the goal-creation
// workflow. It implements telegram.MessageHandler.
type Handler struct {
	sender     Sender
	store      Store
	identities IdentityStore
	sessions   *SessionStore
}

// NewHandler creates the engine handler.
func NewHandler(sender Sender, store Store, identities IdentityStore) *Handler {
	return &Handler{
		sender:     sender,
		store:      store,
		identities: identities,
		sessions:   NewSessionStore(),
	}
}

// Sessions exposes the session store for inspection in tests and ops.
func (h *Handler) Sessions() *SessionStore {
	return h.sessions
}

// HandleMessage processes one inbound message. Command tokens are matched
// as substrings of the body, in strict priority order: /start first, then
// the link gate, then the fixed commands, then workflow input.
func (h *Handler) HandleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.Chat == nil || msg.From == nil || msg.From.ID == 0 {
		return
	}

	ident, created, err := h.identities.GetOrCreate(ctx, msg.From.ID, msg.Chat.ID, msg.From.Username)
	if err != nil {
		logging.WithContext(ctx).Error("Failed to resolve identity",
			slog.Int64("user_id", msg.From.ID), slog.Any("error", err))
		return
	}
	if created {
		logging.WithContext(ctx).Info("New identity",
			slog.Int64("user_id", ident.UserID), slog.String("username", ident.Username))
	}

	// /start is the reset entry point and replies regardless of link state.
	if strings.Contains(msg.Text, "/start") {
		h.send(ctx, ident.ChatID, formatGreeting(msg.Chat.FirstName))
		if ident.Linked() {
			return
		}
	}

	if !ident.Linked() {
		h.handleUnlinked(ctx, ident)
		return
	}

	// Past the start/link gate an empty body is silently dropped.
	if msg.Text == "" {
		return
	}

	switch {
	case strings.Contains(msg.Text, "/board"):
		h.handleBoards(ctx, ident)
	case strings.Contains(msg.Text, "/goal_category"), strings.Contains(msg.Text, "/category"):
		h.handleCategories(ctx, ident)
	case strings.Contains(msg.Text, "/goals"):
		h.handleGoals(ctx, ident)
	case strings.Contains(msg.Text, "/create"):
		h.handleCreate(ctx, ident)
	case strings.Contains(msg.Text, "/cancel"):
		h.handleCancel(ctx, ident)
	default:
		if session, ok := h.sessions.Get(ident.UserID); ok {
			h.advanceWorkflow(ctx, ident, session, msg.Text)
		} else {
			h.send(ctx, ident.ChatID, msgUnknownCommand)
		}
	}
}

// handleUnlinked issues a fresh verification code and points the user at
// the out-of-band linking flow. Not an error path: linking is a gating
// state, and no further command is interpreted for this message.
func (h *Handler) handleUnlinked(ctx context.Context, ident *identity.Identity) {
	h.send(ctx, ident.ChatID, msgWelcome)

	code := identity.NewVerificationCode()
	if err := h.identities.SetVerificationCode(ctx, ident.UserID, code); err != nil {
		logging.WithContext(ctx).Error("Failed to persist verification code",
			slog.Int64("user_id", ident.UserID), slog.Any("error", err))
		return
	}

	h.send(ctx, ident.ChatID, formatVerificationCode(code))
}

// handleCancel clears any active session. The acknowledgement is sent even
// when no session exists.
func (h *Handler) handleCancel(ctx context.Context, ident *identity.Identity) {
	h.sessions.Clear(ident.UserID)
	h.send(ctx, ident.ChatID, msgCancelled)
}

// send delivers a reply best-effort. A send failure is logged and does not
// halt the loop; there is no retry queue.
func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.sender.SendMessage(ctx, chatID, text); err != nil {
		logging.WithContext(ctx).Warn("Failed to send message",
			slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}
