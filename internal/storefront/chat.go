package storefront

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-cosmetics/internal/models"
)

// SummaryEvery is how many new transcript messages trigger a summary.
const SummaryEvery = 5

var ErrChatClosed = errors.New("chat is not open")

// ChatWidget is the floating support chat. The socket lives only while the
// panel is open and is never reconnected.
type ChatWidget struct {
	client *Client
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewChatWidget(client *Client) *ChatWidget {
	return &ChatWidget{
		client: client,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// SocketURL is the chat endpoint with the scheme switched to ws or wss.
func (w *ChatWidget) SocketURL() string {
	base := w.client.BaseURL()
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/chat/ws"
}

func (w *ChatWidget) Open(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		return nil
	}

	header := http.Header{}
	if token := w.client.Store().Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := w.dialer.DialContext(ctx, w.SocketURL(), header)
	if err != nil {
		return err
	}
	w.conn = conn
	return nil
}

func (w *ChatWidget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn != nil
}

func (w *ChatWidget) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	conn := w.conn
	w.conn = nil
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return conn.Close()
}

// History is the persisted transcript.
func (w *ChatWidget) History() []models.ChatMessage {
	return w.client.Store().ChatHistory()
}

// Send delivers text, waits for the bot and persists both messages. Once
// SummaryEvery messages have piled up since the last summary, they are
// summarised together with the previous summary. A failed summary leaves the
// index alone so the next Send tries again.
func (w *ChatWidget) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, errors.New("empty message")
	}

	w.mu.Lock()
	conn := w.conn
	if conn == nil {
		w.mu.Unlock()
		return models.ChatMessage{}, ErrChatClosed
	}

	store := w.client.Store()
	history := append(store.ChatHistory(), models.ChatMessage{
		Role:      models.ChatRoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
		defer func() {
			_ = conn.SetWriteDeadline(time.Time{})
			_ = conn.SetReadDeadline(time.Time{})
		}()
	}
	var reply models.ChatReply
	err := conn.WriteJSON(models.ChatRequest{Message: text, Summary: store.ChatSummary()})
	if err == nil {
		err = conn.ReadJSON(&reply)
	}
	w.mu.Unlock()
	if err != nil {
		_ = store.SetChatHistory(history)
		return models.ChatMessage{}, err
	}

	bot := models.ChatMessage{Role: models.ChatRoleBot, Content: reply.Reply, Timestamp: reply.Timestamp}
	history = append(history, bot)
	if err := store.SetChatHistory(history); err != nil {
		return bot, err
	}

	w.summarize(ctx, history)
	return bot, nil
}

func (w *ChatWidget) summarize(ctx context.Context, history []models.ChatMessage) {
	store := w.client.Store()
	last := store.LastSummarizedIndex()
	if last > len(history) {
		last = 0
	}
	if len(history)-last < SummaryEvery {
		return
	}
	summary, err := w.client.Summarize(ctx, store.ChatSummary(), history[last:])
	if err != nil {
		return
	}
	_ = store.SetChatSummary(summary)
	_ = store.SetLastSummarizedIndex(len(history))
}

// Reset drops the transcript and its summary.
func (w *ChatWidget) Reset() error {
	store := w.client.Store()
	return errors.Join(
		store.SetChatHistory(nil),
		store.SetChatSummary(""),
		store.SetLastSummarizedIndex(0),
	)
}
