package bot

import (
	"context"
	"log/slog"

	"github.com/alekspetrov/goaltrack/internal/identity"
	"github.com/alekspetrov/goaltrack/internal/logging"
)

// The query handlers are pure reads: none of them touches the session store.

// handleBoards replies with the boards the account participates in.
func (h *Handler) handleBoards(ctx context.Context, ident *identity.Identity) {
	boards, err := h.store.ListBoards(ctx, ident.AccountID)
	if err != nil {
		logging.WithContext(ctx).Error("Failed to list boards",
			slog.Int64("account_id", ident.AccountID), slog.Any("error", err))
		return
	}

	if len(boards) == 0 {
		h.send(ctx, ident.ChatID, msgNoBoards)
		return
	}
	h.send(ctx, ident.ChatID, formatBoards(boards))
}

// handleCategories replies with non-deleted categories reachable through
// the account's boards.
func (h *Handler) handleCategories(ctx context.Context, ident *identity.Identity) {
	categories, err := h.store.ListCategories(ctx, ident.AccountID)
	if err != nil {
		logging.WithContext(ctx).Error("Failed to list categories",
			slog.Int64("account_id", ident.AccountID), slog.Any("error", err))
		return
	}

	if len(categories) == 0 {
		h.send(ctx, ident.ChatID, msgNoCategories)
		return
	}
	h.send(ctx, ident.ChatID, formatCategories(categories))
}

// handleGoals replies with the account's goals.
func (h *Handler) handleGoals(ctx context.Context, ident *identity.Identity) {
	goals, err := h.store.ListGoals(ctx, ident.AccountID)
	if err != nil {
		logging.WithContext(ctx).Error("Failed to list goals",
			slog.Int64("account_id", ident.AccountID), slog.Any("error", err))
		return
	}

	if len(goals) == 0 {
		h.send(ctx, ident.ChatID, msgNoGoals)
		return
	}

	owner := ident.Username
	if owner == "" {
		owner = "you"
	}
	h.send(ctx, ident.ChatID, formatGoals(goals, owner))
}
