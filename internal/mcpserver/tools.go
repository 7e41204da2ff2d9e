package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/alexandertsai/mcp-telegram/internal/domain"
	"github.com/alexandertsai/mcp-telegram/internal/telegram"
)

const (
	defaultPageSize     = 20
	defaultContextCount = 30
)

type handlers struct {
	client telegram.Client
	logger *zap.Logger
}

func (h *handlers) getChats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	page := intArg(args, "page", 1)
	pageSize := intArg(args, "page_size", defaultPageSize)

	result, err := h.client.ListChats(ctx, page, pageSize, cursorFromArgs(args, pageSize))
	if err != nil {
		return h.errResult("get_chats", err)
	}
	if result.Chats == nil {
		result.Chats = []domain.ChatSummary{}
	}
	return h.jsonResult(result)
}

func (h *handlers) getMessages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	chatID := int64Arg(args, "chat_id", 0)
	page := intArg(args, "page", 1)
	pageSize := intArg(args, "page_size", defaultPageSize)

	messages, err := h.client.ListMessages(ctx, chatID, page, pageSize)
	if err != nil {
		return h.errResult("get_messages", err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return h.jsonResult(messages)
}

func (h *handlers) markRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID := int64Arg(req.GetArguments(), "chat_id", 0)

	if err := h.client.MarkRead(ctx, chatID); err != nil {
		h.logger.Warn("mark_messages_read failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return h.jsonResult(map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	}
	return h.jsonResult(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Successfully marked messages as read in chat %d", chatID),
	})
}

func (h *handlers) sendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	chatID := int64Arg(args, "chat_id", 0)
	text, _ := args["message"].(string)
	replyTo := intArg(args, "reply_to_msg_id", 0)

	receipt, err := h.client.SendMessage(ctx, chatID, text, replyTo)
	if err != nil {
		h.logger.Warn("send_message failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return h.jsonResult(map[string]any{
			"success":               false,
			"error":                 err.Error(),
			"is_reply":              replyTo > 0,
			"replied_to_message_id": replyTo,
		})
	}
	return h.jsonResult(map[string]any{
		"success":               true,
		"message_id":            receipt.MessageID,
		"is_reply":              receipt.IsReply,
		"replied_to_message_id": receipt.RepliedToID,
	})
}

func (h *handlers) conversationContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	chatID := int64Arg(args, "chat_id", 0)
	count := intArg(args, "message_count", defaultContextCount)

	result, err := h.client.ConversationContext(ctx, chatID, count)
	if err != nil {
		h.logger.Warn("get_conversation_context failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return h.jsonResult(map[string]any{
			"error":   err.Error(),
			"message": "Failed to retrieve conversation context",
		})
	}
	if result.Conversation == nil {
		result.Conversation = []domain.ContextEntry{}
	}
	return h.jsonResult(result)
}

// jsonResult serializes any payload, success or failure, into the
// JSON-string tool result. Marshalling these payloads cannot fail in
// practice; if it somehow does, the error still goes out as a payload.
func (h *handlers) jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		h.logger.Error("marshal tool result", zap.Error(err))
		return mcp.NewToolResultText(fmt.Sprintf(`{"error": %q}`, err.Error())), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *handlers) errResult(tool string, err error) (*mcp.CallToolResult, error) {
	h.logger.Warn(tool+" failed", zap.Error(err))
	return h.jsonResult(map[string]any{"error": err.Error()})
}

// cursorFromArgs rebuilds the pagination cursor when any offset
// parameter was passed. The adapter ignores it on page 1.
func cursorFromArgs(args map[string]any, pageSize int) *domain.Cursor {
	offsetID := intArg(args, "offset_id", 0)
	offsetPeer := int64Arg(args, "offset_peer_id", 0)
	offsetDate, hasDate := args["offset_date"].(string)

	if offsetID == 0 && offsetPeer == 0 && !hasDate {
		return nil
	}

	cur := &domain.Cursor{
		PageSize:     pageSize,
		OffsetID:     offsetID,
		OffsetPeerID: offsetPeer,
	}
	if hasDate {
		if ts, err := time.Parse(time.RFC3339, offsetDate); err == nil {
			cur.OffsetDate = ts
		}
	}
	return cur
}

// JSON numbers arrive as float64; tolerate integers too for fakes.
func intArg(args map[string]any, name string, def int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return def
}

func int64Arg(args map[string]any, name string, def int64) int64 {
	switch v := args[name].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return def
}
