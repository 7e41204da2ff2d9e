package telegram

import (
	"fmt"
	"time"

	"github.com/gotd/td/tg"

	"github.com/alexandertsai/mcp-telegram/internal/domain"
)

// entitySet indexes the user/chat/channel entities Telegram ships
// alongside dialog and history responses.
type entitySet struct {
	users    map[int64]*tg.User
	chats    map[int64]*tg.Chat
	channels map[int64]*tg.Channel
}

func newEntitySet(users []tg.UserClass, chats []tg.ChatClass) entitySet {
	ents := entitySet{
		users:    make(map[int64]*tg.User, len(users)),
		chats:    make(map[int64]*tg.Chat),
		channels: make(map[int64]*tg.Channel),
	}
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			ents.users[user.ID] = user
		}
	}
	for _, c := range chats {
		switch chat := c.(type) {
		case *tg.Chat:
			ents.chats[chat.ID] = chat
		case *tg.Channel:
			ents.channels[chat.ID] = chat
		}
	}
	return ents
}

// displayName resolves a human-readable name for a peer, falling back
// to a numeric placeholder when the entity was not shipped.
func (e entitySet) displayName(peer tg.PeerClass) string {
	switch p := peer.(type) {
	case *tg.PeerUser:
		if u, ok := e.users[p.UserID]; ok {
			return formatUserName(u)
		}
	case *tg.PeerChat:
		if c, ok := e.chats[p.ChatID]; ok {
			return c.Title
		}
	case *tg.PeerChannel:
		if ch, ok := e.channels[p.ChannelID]; ok {
			return ch.Title
		}
	}
	return fmt.Sprintf("User %d", peerID(peer))
}

// kind classifies a peer: direct chats are "user", basic groups and
// megagroups are "group", broadcast channels are "channel".
func (e entitySet) kind(peer tg.PeerClass) domain.ChatKind {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return domain.KindUser
	case *tg.PeerChat:
		return domain.KindGroup
	case *tg.PeerChannel:
		if ch, ok := e.channels[p.ChannelID]; ok && !ch.Megagroup {
			return domain.KindChannel
		}
		return domain.KindGroup
	}
	return domain.KindUser
}

// dialogParts splits a getDialogs result into its component lists.
func dialogParts(result tg.MessagesDialogsClass) ([]tg.DialogClass, []tg.MessageClass, entitySet, error) {
	switch r := result.(type) {
	case *tg.MessagesDialogs:
		return r.Dialogs, r.Messages, newEntitySet(r.Users, r.Chats), nil
	case *tg.MessagesDialogsSlice:
		return r.Dialogs, r.Messages, newEntitySet(r.Users, r.Chats), nil
	default:
		return nil, nil, entitySet{}, fmt.Errorf("unexpected dialogs type: %T", result)
	}
}

// historyParts splits a getHistory result into messages and entities.
func historyParts(result tg.MessagesMessagesClass) ([]tg.MessageClass, entitySet, error) {
	switch r := result.(type) {
	case *tg.MessagesMessages:
		return r.Messages, newEntitySet(r.Users, r.Chats), nil
	case *tg.MessagesMessagesSlice:
		return r.Messages, newEntitySet(r.Users, r.Chats), nil
	case *tg.MessagesChannelMessages:
		return r.Messages, newEntitySet(r.Users, r.Chats), nil
	default:
		return nil, entitySet{}, fmt.Errorf("unexpected messages type: %T", result)
	}
}

// topMessage finds the dialog's top message in the response's message
// list. Message ids are only unique per channel, so the peer has to
// match too.
func topMessage(messages []tg.MessageClass, dlg *tg.Dialog) *tg.Message {
	for _, m := range messages {
		msg, ok := m.(*tg.Message)
		if !ok {
			continue
		}
		if msg.ID == dlg.TopMessage && peerID(msg.PeerID) == peerID(dlg.Peer) {
			return msg
		}
	}
	return nil
}

// convertMessage projects a tg.Message into the wire shape, rendering
// formatting entities into markdown.
func convertMessage(msg *tg.Message, self *tg.User) domain.Message {
	out := domain.Message{
		ID:   msg.ID,
		Date: time.Unix(int64(msg.Date), 0).UTC(),
		Text: EntitiesToMarkdown(msg.Message, msg.Entities),
		Out:  msg.Out,
	}

	out.SenderID = senderID(msg, self)

	if h, ok := msg.ReplyTo.(*tg.MessageReplyHeader); ok {
		out.ReplyToID = h.ReplyToMsgID
	}

	return out
}

// senderID extracts the author of a message. In DMs FromID is often
// absent: incoming messages come from the dialog peer, outgoing ones
// from us.
func senderID(msg *tg.Message, self *tg.User) int64 {
	if msg.FromID != nil {
		return peerID(msg.FromID)
	}
	if msg.Out {
		if self != nil {
			return self.ID
		}
		return 0
	}
	if p, ok := msg.PeerID.(*tg.PeerUser); ok {
		return p.UserID
	}
	return 0
}

// peerID extracts the numeric id from any peer class.
func peerID(peer tg.PeerClass) int64 {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return p.UserID
	case *tg.PeerChat:
		return p.ChatID
	case *tg.PeerChannel:
		return p.ChannelID
	}
	return 0
}

// inputPeerToPeer converts an input peer back to a plain peer so the
// same id extraction works for both.
func inputPeerToPeer(peer tg.InputPeerClass) tg.PeerClass {
	switch p := peer.(type) {
	case *tg.InputPeerUser:
		return &tg.PeerUser{UserID: p.UserID}
	case *tg.InputPeerChat:
		return &tg.PeerChat{ChatID: p.ChatID}
	case *tg.InputPeerChannel:
		return &tg.PeerChannel{ChannelID: p.ChannelID}
	}
	return nil
}

// sentMessageID digs the id of a just-sent message out of the updates
// Telegram returns for it.
func sentMessageID(updates tg.UpdatesClass) int {
	switch u := updates.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID
	case *tg.UpdatesCombined:
		return messageIDFromUpdates(u.Updates)
	case *tg.Updates:
		return messageIDFromUpdates(u.Updates)
	}
	return 0
}

func messageIDFromUpdates(list []tg.UpdateClass) int {
	for _, upd := range list {
		switch u := upd.(type) {
		case *tg.UpdateMessageID:
			return u.ID
		case *tg.UpdateNewMessage:
			if msg, ok := u.Message.(*tg.Message); ok {
				return msg.ID
			}
		case *tg.UpdateNewChannelMessage:
			if msg, ok := u.Message.(*tg.Message); ok {
				return msg.ID
			}
		}
	}
	return 0
}

// formatUserName returns a display name for a user.
func formatUserName(u *tg.User) string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("User %d", u.ID)
}
