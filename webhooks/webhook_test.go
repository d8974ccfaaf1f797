package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume-bot/handlers"
	"perfume-bot/services"
)

type captureSender struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureSender) SendMessage(_ context.Context, _, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

func (c *captureSender) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

type staticCompleter struct{}

func (staticCompleter) Complete(context.Context, services.CompletionRequest) (string, error) {
	return "ок", nil
}

func newTestApp(sender *captureSender) *fiber.App {
	catalog := services.NewCatalog()
	sessions := services.NewSessionManager(services.NewMemoryStore())
	router := services.NewRouter(catalog, sessions, staticCompleter{}, services.DefaultRouterConfig(nil))
	bot := handlers.NewBot(router, sessions, sender, "")

	app := fiber.New()
	RegisterRoutes(app, bot)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body []byte) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func incomingEvent(chatID, sender, text string) WebhookEvent {
	return WebhookEvent{
		TypeWebhook: "incomingMessageReceived",
		SenderData:  SenderData{ChatID: chatID, Sender: sender, SenderName: "Айгерим"},
		MessageData: MessageData{
			TypeMessage:     "textMessage",
			TextMessageData: &TextMessageData{TextMessage: text},
		},
	}
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	app := newTestApp(&captureSender{})

	resp := postWebhook(t, app, []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhookRejectsUnknownType(t *testing.T) {
	app := newTestApp(&captureSender{})

	body, _ := json.Marshal(WebhookEvent{TypeWebhook: "somethingElse"})
	resp := postWebhook(t, app, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhookIgnoresStatusEvents(t *testing.T) {
	sender := &captureSender{}
	app := newTestApp(sender)

	body, _ := json.Marshal(WebhookEvent{TypeWebhook: "outgoingMessageStatus"})
	resp := postWebhook(t, app, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ignored", out["status"])
	assert.Empty(t, sender.messages())
}

func TestWebhookIgnoresGroupChats(t *testing.T) {
	sender := &captureSender{}
	app := newTestApp(sender)

	body, _ := json.Marshal(incomingEvent("1203630123456789@g.us", "77001234567@c.us", "привет"))
	resp := postWebhook(t, app, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ignored", out["status"])
	assert.Empty(t, sender.messages())
}

func TestWebhookProcessesIncomingMessage(t *testing.T) {
	sender := &captureSender{}
	app := newTestApp(sender)

	body, _ := json.Marshal(incomingEvent("77001234567@c.us", "77001234567@c.us", "привет"))
	resp := postWebhook(t, app, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out["status"])

	// Processing is asynchronous; the welcome goes out shortly after the ack.
	assert.Eventually(t, func() bool {
		return len(sender.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, sender.messages()[0], "Здравствуйте, Айгерим!")
}

func TestWebhookTreatsSelfMessageAsIncoming(t *testing.T) {
	sender := &captureSender{}
	app := newTestApp(sender)

	event := incomingEvent("77001234567@c.us", "77009999999@c.us", "привет")
	event.TypeWebhook = "outgoingMessageReceived"
	event.InstanceData.WID = "77009999999@c.us"

	body, _ := json.Marshal(event)
	resp := postWebhook(t, app, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Eventually(t, func() bool {
		return len(sender.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
