package bot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alekspetrov/goaltrack/internal/identity"
	"github.com/alekspetrov/goaltrack/internal/logging"
	"github.com/alekspetrov/goaltrack/internal/storage"
)

// dueDateLayout is the only accepted deadline format.
const dueDateLayout = "2006-01-02"

// handleCreate starts (or restarts) the goal-creation dialogue. Issuing
// /create while a session is active discards the collected input and starts
// over from category selection.
func (h *Handler) handleCreate(ctx context.Context, ident *identity.Identity) {
	categories, err := h.store.ListCategories(ctx, ident.AccountID)
	if err != nil {
		logging.WithContext(ctx).Error("Failed to list categories",
			slog.Int64("account_id", ident.AccountID), slog.Any("error", err))
		return
	}

	if len(categories) == 0 {
		h.send(ctx, ident.ChatID, msgEmptyCategories)
		return
	}

	offered := make([]int64, 0, len(categories))
	for _, c := range categories {
		offered = append(offered, c.ID)
	}

	h.sessions.Begin(ident.UserID, &Session{
		State:     StateAwaitingCategory,
		AccountID: ident.AccountID,
		ChatID:    ident.ChatID,
		Offered:   offered,
	})

	h.send(ctx, ident.ChatID, formatCategoryChoices(categories))
}

// advanceWorkflow feeds one free-text message into the active session.
func (h *Handler) advanceWorkflow(ctx context.Context, ident *identity.Identity, session *Session, text string) {
	switch session.State {
	case StateAwaitingCategory:
		h.selectCategory(ctx, ident, session, text)
	case StateAwaitingTitle:
		session.Title = text
		session.State = StateAwaitingDescription
		h.send(ctx, ident.ChatID, msgEnterDescription)
	case StateAwaitingDescription:
		session.Description = text
		session.State = StateAwaitingDueDate
		h.send(ctx, ident.ChatID, msgEnterDueDate)
	case StateAwaitingDueDate:
		h.commitGoal(ctx, ident, session, text)
	}
}

// selectCategory validates a numeric selection against the offered list and
// the store's ownership check. Non-numeric input and ids the account does
// not own are ignored without a reply, leaving the session where it is.
func (h *Handler) selectCategory(ctx context.Context, ident *identity.Identity, session *Session, text string) {
	categoryID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return
	}
	if !session.Offers(categoryID) {
		return
	}

	category, err := h.store.GetOwnedCategory(ctx, session.AccountID, categoryID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logging.WithContext(ctx).Error("Failed to fetch category",
				slog.Int64("category_id", categoryID), slog.Any("error", err))
		}
		return
	}

	session.CategoryID = category.ID
	session.CategoryTitle = category.Title
	session.State = StateAwaitingTitle
	h.send(ctx, ident.ChatID, formatCategorySelected(category.Title))
}

// commitGoal validates the deadline, persists the goal, and clears the
// session. On a malformed date or a store failure the session survives so
// the user can resend the deadline.
func (h *Handler) commitGoal(ctx context.Context, ident *identity.Identity, session *Session, text string) {
	dueDate := strings.TrimSpace(text)
	if _, err := time.Parse(dueDateLayout, dueDate); err != nil {
		h.send(ctx, ident.ChatID, msgBadDueDate)
		return
	}

	goal, err := h.store.CreateGoal(ctx, storage.NewGoal{
		AccountID:   session.AccountID,
		CategoryID:  session.CategoryID,
		Title:       session.Title,
		Description: session.Description,
		DueDate:     dueDate,
	})
	if err != nil {
		logging.WithContext(ctx).Error("Failed to create goal",
			slog.Int64("account_id", session.AccountID), slog.Any("error", err))
		h.send(ctx, ident.ChatID, msgCreateFailed)
		return
	}

	h.sessions.Clear(ident.UserID)
	logging.WithContext(ctx).Info("Goal created",
		slog.Int64("goal_id", goal.ID), slog.Int64("account_id", goal.AccountID))
	h.send(ctx, ident.ChatID, formatGoalCreated(goal.Title))
}
