// Package mcpserver declares the Telegram tools and serves them over
// the MCP stdio transport.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/alexandertsai/mcp-telegram/internal/telegram"
)

const version = "1.0.0"

// New builds the MCP server with every Telegram tool registered.
// Handlers never return protocol-level errors; every outcome,
// including failure, is a JSON-encoded text result.
func New(client telegram.Client, logger *zap.Logger) *server.MCPServer {
	srv := server.NewMCPServer(
		"telegram",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := &handlers{client: client, logger: logger}

	srv.AddTool(mcp.NewTool("get_chats",
		mcp.WithDescription("Used when checking messages. Gets a paginated list of chats from Telegram. Page 1 starts from the most recent chat; for later pages pass the offset values from the previous response's next_page_params. After using this tool, use get_messages to read the actual messages from chats with unread_count > 0."),
		mcp.WithNumber("page",
			mcp.Required(),
			mcp.Description("Page number (1-indexed)."),
		),
		mcp.WithNumber("page_size",
			mcp.DefaultNumber(defaultPageSize),
			mcp.Description("Number of chats per page."),
		),
		mcp.WithNumber("offset_id",
			mcp.Description("Message ID offset from the previous page's next_page_params."),
		),
		mcp.WithString("offset_date",
			mcp.Description("ISO-8601 date offset from the previous page's next_page_params."),
		),
		mcp.WithNumber("offset_peer_id",
			mcp.Description("Peer ID offset from the previous page's next_page_params."),
		),
	), h.getChats)

	srv.AddTool(mcp.NewTool("get_messages",
		mcp.WithDescription("Get paginated messages from a specific chat, newest first, and mark them as read. Pages use an absolute offset: page N skips (N-1)*page_size messages."),
		mcp.WithNumber("chat_id",
			mcp.Required(),
			mcp.Description("The ID of the chat."),
		),
		mcp.WithNumber("page",
			mcp.Required(),
			mcp.Description("Page number (1-indexed)."),
		),
		mcp.WithNumber("page_size",
			mcp.DefaultNumber(defaultPageSize),
			mcp.Description("Number of messages per page."),
		),
	), h.getMessages)

	srv.AddTool(mcp.NewTool("mark_messages_read",
		mcp.WithDescription("Mark all unread messages in a specific Telegram chat as read."),
		mcp.WithNumber("chat_id",
			mcp.Required(),
			mcp.Description("The ID of the chat whose messages should be marked as read."),
		),
	), h.markRead)

	srv.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send a message to a specific chat in Telegram."),
		mcp.WithNumber("chat_id",
			mcp.Required(),
			mcp.Description("The ID of the chat."),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The message content to send."),
		),
		mcp.WithNumber("reply_to_msg_id",
			mcp.Description("Optional ID of a message to reply to."),
		),
	), h.sendMessage)

	srv.AddTool(mcp.NewTool("get_conversation_context",
		mcp.WithDescription("Retrieve recent messages from a chat together with the user's style guide, so a reply can be generated that matches the existing conversation's style and tone."),
		mcp.WithNumber("chat_id",
			mcp.Required(),
			mcp.Description("The ID of the chat to analyze."),
		),
		mcp.WithNumber("message_count",
			mcp.DefaultNumber(defaultContextCount),
			mcp.Description("Number of recent messages to retrieve."),
		),
	), h.conversationContext)

	return srv
}
