package telegram

import (
	"context"
	"errors"

	"github.com/alexandertsai/mcp-telegram/internal/domain"
)

// ErrNotAuthorized means the stored session is missing or was rejected
// by Telegram. Interactive login never happens here; the operator has
// to run the auth command.
var ErrNotAuthorized = errors.New("telegram: not authorized, run tg-auth first")

// Client is the interface for Telegram operations backing the tools.
type Client interface {
	ListChats(ctx context.Context, page, pageSize int, cursor *domain.Cursor) (domain.ChatPage, error)
	ListMessages(ctx context.Context, chatID int64, page, pageSize int) ([]domain.Message, error)
	MarkRead(ctx context.Context, chatID int64) error
	SendMessage(ctx context.Context, chatID int64, text string, replyTo int) (domain.SendReceipt, error)
	ConversationContext(ctx context.Context, chatID int64, count int) (domain.ConversationContext, error)
	Close() error
}
