package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume-bot/models"
	"perfume-bot/services"
)

type outbound struct {
	chatID string
	text   string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []outbound
}

func (r *recordingSender) SendMessage(_ context.Context, chatID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, outbound{chatID: chatID, text: text})
	return nil
}

type stubCompleter struct {
	reply string
}

func (s stubCompleter) Complete(context.Context, services.CompletionRequest) (string, error) {
	return s.reply, nil
}

func newTestBot(reply, managerID string) (*Bot, *services.SessionManager, *recordingSender) {
	catalog := services.NewCatalog()
	sessions := services.NewSessionManager(services.NewMemoryStore())
	router := services.NewRouter(catalog, sessions, stubCompleter{reply: reply}, services.DefaultRouterConfig(nil))
	sender := &recordingSender{}
	return NewBot(router, sessions, sender, managerID), sessions, sender
}

func TestHandleIncomingFormatsModelMarkdown(t *testing.T) {
	bot, sessions, sender := newTestBot("**Ответ** модели", "")
	require.NoError(t, sessions.MarkWelcomed(context.Background(), "u1"))

	bot.HandleIncoming(IncomingMessage{
		ChatID:   "77001234567@c.us",
		SenderID: "u1",
		Text:     "до скольки вы работаете",
		IsText:   true,
	})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "77001234567@c.us", sender.sent[0].chatID)
	assert.Equal(t, "*Ответ* модели", sender.sent[0].text)
}

func TestHandleIncomingSendsStandbyInManagerMode(t *testing.T) {
	bot, sessions, sender := newTestBot("", "77009999999@c.us")
	ctx := context.Background()
	require.NoError(t, sessions.MarkWelcomed(ctx, "u1"))
	require.NoError(t, sessions.SetMode(ctx, "u1", models.ModeManager))

	bot.HandleIncoming(IncomingMessage{
		ChatID:   "77001234567@c.us",
		SenderID: "u1",
		Text:     "вы тут?",
		IsText:   true,
	})

	// Only the standby notice: the chat was already handed off, so the
	// manager is not pinged again.
	require.Len(t, sender.sent, 1)
	assert.Equal(t, services.ManagerStandby(services.LangRU), sender.sent[0].text)
}

func TestHandleIncomingNotifiesManagerOnHandoff(t *testing.T) {
	bot, sessions, sender := newTestBot("", "77009999999@c.us")
	require.NoError(t, sessions.MarkWelcomed(context.Background(), "u1"))

	bot.HandleIncoming(IncomingMessage{
		ChatID:     "77001234567@c.us",
		SenderID:   "u1",
		SenderName: "Айгерим",
		Text:       "переключить на менеджера",
		IsText:     true,
	})

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "77001234567@c.us", sender.sent[0].chatID)
	assert.Equal(t, "77009999999@c.us", sender.sent[1].chatID)
	assert.Contains(t, sender.sent[1].text, "Айгерим")
	assert.Contains(t, sender.sent[1].text, "ожидает менеджера")
}
