package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	tgsession "github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/tg"

	"github.com/alexandertsai/mcp-telegram/internal/domain"
)

// Adapter implements Client using gotd/td. It owns exactly one
// connection, established lazily on the first call and reused until
// the underlying run loop dies, in which case the next call
// reconnects. It never logs in interactively; a missing or rejected
// session is reported as ErrNotAuthorized.
type Adapter struct {
	apiID          int
	apiHash        string
	storage        tgsession.Storage
	styleGuidePath string
	logger         *zap.Logger

	mu   sync.Mutex
	conn *conn

	peerMu sync.Mutex
	peers  map[int64]tg.InputPeerClass
}

var _ Client = (*Adapter)(nil)

// conn is one live gotd run loop.
type conn struct {
	api    *tg.Client
	sender *message.Sender
	self   *tg.User
	cancel context.CancelFunc
	done   chan struct{}
}

func (c *conn) alive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func NewAdapter(apiID int, apiHash string, storage tgsession.Storage, styleGuidePath string, logger *zap.Logger) *Adapter {
	return &Adapter{
		apiID:          apiID,
		apiHash:        apiHash,
		storage:        storage,
		styleGuidePath: styleGuidePath,
		logger:         logger,
		peers:          make(map[int64]tg.InputPeerClass),
	}
}

// ensure returns a live connection, dialing one if needed. The
// connection outlives the calling context; ctx only bounds the wait
// for readiness.
func (a *Adapter) ensure(ctx context.Context) (*conn, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn != nil && a.conn.alive() {
		return a.conn, nil
	}
	if a.conn != nil {
		a.conn.cancel()
		a.conn = nil
	}

	client := telegram.NewClient(a.apiID, a.apiHash, telegram.Options{
		Logger:         a.logger.Named("gotd"),
		SessionStorage: a.storage,
	})

	runCtx, cancel := context.WithCancel(context.Background())
	c := &conn{cancel: cancel, done: make(chan struct{})}
	ready := make(chan error, 1)

	go func() {
		defer close(c.done)
		err := client.Run(runCtx, func(ctx context.Context) error {
			status, err := client.Auth().Status(ctx)
			if err != nil {
				return fmt.Errorf("auth status: %w", err)
			}
			if !status.Authorized {
				return ErrNotAuthorized
			}

			self, err := client.Self(ctx)
			if err != nil {
				return fmt.Errorf("get self: %w", err)
			}

			c.api = client.API()
			c.sender = message.NewSender(c.api)
			c.self = self
			ready <- nil

			// Hold the connection open until torn down.
			<-ctx.Done()
			return ctx.Err()
		})
		if err != nil {
			a.logger.Warn("run loop exited", zap.Error(err))
			select {
			case ready <- err:
			default:
			}
		}
	}()

	select {
	case err := <-ready:
		if err != nil {
			cancel()
			return nil, err
		}
		a.conn = c
		a.logger.Info("connected", zap.Int64("self_id", c.self.ID))
		return c, nil
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}
}

// Close tears down the connection if one is up.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn != nil {
		a.conn.cancel()
		<-a.conn.done
		a.conn = nil
	}
	return nil
}

// ListChats returns one page of dialogs. Page 1 (or a nil cursor)
// starts from the most recent dialog; later pages pass the previous
// page's cursor triple as offsets, which is only correct for
// sequential consumption. HasMore is the full-page heuristic: a last
// page of exactly pageSize still reports more data.
func (a *Adapter) ListChats(ctx context.Context, page, pageSize int, cursor *domain.Cursor) (domain.ChatPage, error) {
	c, err := a.ensure(ctx)
	if err != nil {
		return domain.ChatPage{}, err
	}

	req := &tg.MessagesGetDialogsRequest{
		Limit:      pageSize,
		OffsetPeer: &tg.InputPeerEmpty{},
	}
	if page > 1 && cursor != nil {
		req.OffsetID = cursor.OffsetID
		if !cursor.OffsetDate.IsZero() {
			req.OffsetDate = int(cursor.OffsetDate.Unix())
		}
		if peer := a.findPeer(cursor.OffsetPeerID); peer != nil {
			req.OffsetPeer = peer
		}
	}

	result, err := c.api.MessagesGetDialogs(ctx, req)
	if err != nil {
		return domain.ChatPage{}, fmt.Errorf("get dialogs: %w", err)
	}

	dlgs, messages, ents, err := dialogParts(result)
	if err != nil {
		return domain.ChatPage{}, err
	}
	a.cacheEntities(ents)

	pageResult := domain.ChatPage{
		Page:     page,
		PageSize: pageSize,
	}

	for _, d := range dlgs {
		dlg, ok := d.(*tg.Dialog)
		if !ok {
			continue
		}
		id := peerID(dlg.Peer)
		pageResult.Chats = append(pageResult.Chats, domain.ChatSummary{
			ID:          id,
			Name:        ents.displayName(dlg.Peer),
			UnreadCount: dlg.UnreadCount,
			Kind:        ents.kind(dlg.Peer),
		})

		// Cursor comes from the last dialog's top message.
		if top := topMessage(messages, dlg); top != nil {
			pageResult.Next = &domain.Cursor{
				Page:         page + 1,
				PageSize:     pageSize,
				OffsetID:     top.ID,
				OffsetDate:   time.Unix(int64(top.Date), 0).UTC(),
				OffsetPeerID: id,
			}
		}
	}

	pageResult.HasMore = len(pageResult.Chats) == pageSize
	return pageResult, nil
}

// ListMessages returns one page of a chat's history, newest first,
// using an absolute offset of (page-1)*pageSize into the history. As a
// side effect the chat is marked read; that acknowledgement is
// best-effort and never fails the read.
func (a *Adapter) ListMessages(ctx context.Context, chatID int64, page, pageSize int) ([]domain.Message, error) {
	c, err := a.ensure(ctx)
	if err != nil {
		return nil, err
	}

	peer, err := a.resolvePeer(ctx, c, chatID)
	if err != nil {
		return nil, err
	}

	result, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:      peer,
		Limit:     pageSize,
		AddOffset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	messages, _, err := historyParts(result)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Message, 0, len(messages))
	for _, m := range messages {
		msg, ok := m.(*tg.Message)
		if !ok {
			continue
		}
		out = append(out, convertMessage(msg, c.self))
	}

	if err := a.markRead(ctx, c, peer); err != nil {
		a.logger.Warn("mark read after history failed",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}

	return out, nil
}

// MarkRead acknowledges everything in the chat as read.
func (a *Adapter) MarkRead(ctx context.Context, chatID int64) error {
	c, err := a.ensure(ctx)
	if err != nil {
		return err
	}
	peer, err := a.resolvePeer(ctx, c, chatID)
	if err != nil {
		return err
	}
	return a.markRead(ctx, c, peer)
}

func (a *Adapter) markRead(ctx context.Context, c *conn, peer tg.InputPeerClass) error {
	switch p := peer.(type) {
	case *tg.InputPeerChannel:
		_, err := c.api.ChannelsReadHistory(ctx, &tg.ChannelsReadHistoryRequest{
			Channel: &tg.InputChannel{ChannelID: p.ChannelID, AccessHash: p.AccessHash},
		})
		return err
	case *tg.InputPeerUser, *tg.InputPeerChat:
		_, err := c.api.MessagesReadHistory(ctx, &tg.MessagesReadHistoryRequest{
			Peer: peer,
		})
		return err
	default:
		return fmt.Errorf("unsupported peer type for mark as read: %T", peer)
	}
}

// SendMessage sends text to a chat, optionally as a reply, and returns
// the id Telegram assigned to the new message.
func (a *Adapter) SendMessage(ctx context.Context, chatID int64, text string, replyTo int) (domain.SendReceipt, error) {
	c, err := a.ensure(ctx)
	if err != nil {
		return domain.SendReceipt{}, err
	}
	peer, err := a.resolvePeer(ctx, c, chatID)
	if err != nil {
		return domain.SendReceipt{}, err
	}

	builder := c.sender.To(peer)
	var updates tg.UpdatesClass
	if replyTo > 0 {
		updates, err = builder.Reply(replyTo).Text(ctx, text)
	} else {
		updates, err = builder.Text(ctx, text)
	}
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("send message: %w", err)
	}

	return domain.SendReceipt{
		MessageID:   sentMessageID(updates),
		IsReply:     replyTo > 0,
		RepliedToID: replyTo,
	}, nil
}

// resolvePeer maps a numeric chat id to an InputPeer with its access
// hash. The cache is connection-scoped resolution state; on a miss the
// dialog list is walked once to repopulate it.
func (a *Adapter) resolvePeer(ctx context.Context, c *conn, chatID int64) (tg.InputPeerClass, error) {
	if peer := a.findPeer(chatID); peer != nil {
		return peer, nil
	}
	if err := a.refreshPeers(ctx, c); err != nil {
		return nil, err
	}
	if peer := a.findPeer(chatID); peer != nil {
		return peer, nil
	}
	return nil, fmt.Errorf("unknown chat: %d", chatID)
}

// refreshPeers walks all dialogs, caching every input peer seen.
func (a *Adapter) refreshPeers(ctx context.Context, c *conn) error {
	iter := dialogs.NewQueryBuilder(c.api).GetDialogs().BatchSize(100).Iter()
	for iter.Next(ctx) {
		elem := iter.Value()
		if id := peerID(inputPeerToPeer(elem.Peer)); id != 0 {
			a.cachePeer(id, elem.Peer)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("iterate dialogs: %w", err)
	}
	return nil
}

func (a *Adapter) findPeer(chatID int64) tg.InputPeerClass {
	a.peerMu.Lock()
	defer a.peerMu.Unlock()
	return a.peers[chatID]
}

func (a *Adapter) cachePeer(chatID int64, peer tg.InputPeerClass) {
	a.peerMu.Lock()
	defer a.peerMu.Unlock()
	a.peers[chatID] = peer
}

func (a *Adapter) cacheEntities(ents entitySet) {
	for id, u := range ents.users {
		a.cachePeer(id, &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash})
	}
	for id := range ents.chats {
		a.cachePeer(id, &tg.InputPeerChat{ChatID: id})
	}
	for id, ch := range ents.channels {
		a.cachePeer(id, &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash})
	}
}
