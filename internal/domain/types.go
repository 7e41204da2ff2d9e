package domain

import "time"

// ChatKind mirrors the Telegram peer classes a dialog can point at.
type ChatKind string

const (
	KindUser    ChatKind = "user"
	KindGroup   ChatKind = "group"
	KindChannel ChatKind = "channel"
)

type ChatSummary struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	UnreadCount int      `json:"unread_count"`
	Kind        ChatKind `json:"type"`
}

// Cursor is the offset triple for the next sequential page of dialogs.
// It is derived from the last dialog of the previous page, so it only
// makes sense for strictly sequential paging.
type Cursor struct {
	Page         int       `json:"page"`
	PageSize     int       `json:"page_size"`
	OffsetID     int       `json:"offset_id"`
	OffsetDate   time.Time `json:"offset_date"`
	OffsetPeerID int64     `json:"offset_peer_id"`
}

type ChatPage struct {
	Chats    []ChatSummary `json:"chats"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	HasMore  bool          `json:"has_more"`
	Next     *Cursor       `json:"next_page_params,omitempty"`
}

type Message struct {
	ID        int       `json:"id"`
	Date      time.Time `json:"date"`
	Text      string    `json:"text"`
	SenderID  int64     `json:"sender_id,omitempty"`
	ReplyToID int       `json:"reply_to_msg_id,omitempty"`
	Out       bool      `json:"-"` // true if sent by us
}

type SendReceipt struct {
	MessageID   int  `json:"message_id"`
	IsReply     bool `json:"is_reply"`
	RepliedToID int  `json:"replied_to_message_id,omitempty"`
}

// ContextEntry is one line of conversation history, oldest first.
type ContextEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	SenderName string    `json:"sender_name"`
	IsSelf     bool      `json:"is_self"`
	Text       string    `json:"text"`
	MessageID  int       `json:"message_id"`
}

type ConversationContext struct {
	Conversation []ContextEntry `json:"conversation"`
	StyleGuide   string         `json:"user_style_guide"`
	Instructions string         `json:"analysis_instructions"`
}
