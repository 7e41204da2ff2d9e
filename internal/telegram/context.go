package telegram

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gotd/td/tg"

	"github.com/alexandertsai/mcp-telegram/internal/domain"
)

// StyleGuidePlaceholder replaces the style guide when its file cannot
// be read. The context call itself never fails over it.
const StyleGuidePlaceholder = "Style guide file not available. Focus only on conversation history."

// AnalysisInstructions tells a downstream generator how to combine the
// style guide with the observed conversation.
const AnalysisInstructions = `You're helping generate messages that match the user's texting style.

1. FIRST, read the user's own description of their texting style in the
   'user_style_guide' field. It is the primary source for how they want
   to come across.

2. SECOND, analyze the conversation history for context and for the
   user's style in practice: tone, typical message length, emoji and
   slang, greeting and closing patterns, sentence structure.

3. SYNTHESIS: blend the explicit style guide with observed patterns;
   on any conflict the explicit style guide wins.

Generate a response that feels authentic to both how they say they
write and how they actually write, appropriate to the conversation.`

// ConversationContext fetches the newest count messages of a chat and
// shapes them for a style-matching generator: text-only, oldest first,
// sender ids resolved to display names using only the entities shipped
// with this one response. The local style guide rides along; if its
// file is unreadable a placeholder goes out instead.
func (a *Adapter) ConversationContext(ctx context.Context, chatID int64, count int) (domain.ConversationContext, error) {
	c, err := a.ensure(ctx)
	if err != nil {
		return domain.ConversationContext{}, err
	}
	peer, err := a.resolvePeer(ctx, c, chatID)
	if err != nil {
		return domain.ConversationContext{}, err
	}

	result, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: count,
	})
	if err != nil {
		return domain.ConversationContext{}, fmt.Errorf("get history: %w", err)
	}

	messages, ents, err := historyParts(result)
	if err != nil {
		return domain.ConversationContext{}, err
	}

	out := domain.ConversationContext{
		StyleGuide:   readStyleGuide(a.styleGuidePath),
		Instructions: AnalysisInstructions,
	}

	// History arrives newest first; walk backwards for chronological
	// order and drop anything without text.
	for i := len(messages) - 1; i >= 0; i-- {
		msg, ok := messages[i].(*tg.Message)
		if !ok || msg.Message == "" {
			continue
		}
		m := convertMessage(msg, c.self)
		out.Conversation = append(out.Conversation, domain.ContextEntry{
			Timestamp:  m.Date,
			SenderName: ents.senderName(msg, c.self),
			IsSelf:     msg.Out,
			Text:       m.Text,
			MessageID:  m.ID,
		})
	}

	return out, nil
}

// senderName resolves the author's display name from the response's
// own entity lists.
func (e entitySet) senderName(msg *tg.Message, self *tg.User) string {
	id := senderID(msg, self)
	if msg.Out && self != nil {
		return formatUserName(self)
	}
	if u, ok := e.users[id]; ok {
		return formatUserName(u)
	}
	if c, ok := e.chats[id]; ok {
		return c.Title
	}
	if ch, ok := e.channels[id]; ok {
		return ch.Title
	}
	return fmt.Sprintf("User %d", id)
}

func readStyleGuide(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return StyleGuidePlaceholder
	}
	guide := strings.TrimSpace(string(data))
	if guide == "" {
		return StyleGuidePlaceholder
	}
	return guide
}
