package webhooks

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"perfume-bot/handlers"
)

func RegisterRoutes(app *fiber.App, bot *handlers.Bot) {
	app.Post("/webhook", handleWebhookEvent(bot))
}

// handleWebhookEvent validates the GreenAPI notification, acknowledges it
// immediately, and processes the message in a separate goroutine.
func handleWebhookEvent(bot *handlers.Bot) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var event WebhookEvent
		if err := c.BodyParser(&event); err != nil {
			slog.Error("Failed to parse webhook body", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
		}

		if !event.IsValid() {
			slog.Error("Invalid webhook format", "typeWebhook", event.TypeWebhook)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook"})
		}

		// The bot messaging itself (testing from the shop's own phone)
		// comes through as an outgoing message; treat it as incoming.
		typeWebhook := event.TypeWebhook
		if typeWebhook == "outgoingMessageReceived" && event.SenderData.Sender == event.InstanceData.WID {
			slog.Info("Self-message detected, treating as incoming")
			typeWebhook = "incomingMessageReceived"
		}

		if typeWebhook != "incomingMessageReceived" {
			slog.Debug("Ignoring webhook event", "typeWebhook", typeWebhook)
			return c.JSON(fiber.Map{"status": "ignored"})
		}

		// Group chats are not the bot's business.
		if strings.HasSuffix(event.SenderData.ChatID, "@g.us") {
			slog.Debug("Group message ignored", "chatID", event.SenderData.ChatID)
			return c.JSON(fiber.Map{"status": "ignored"})
		}

		go processEvent(bot, event)

		return c.JSON(fiber.Map{"status": "ok"})
	}
}

func processEvent(bot *handlers.Bot, event WebhookEvent) {
	senderName := event.SenderData.SenderName
	if senderName == "" {
		senderName = event.SenderData.Sender
	}

	bot.HandleIncoming(handlers.IncomingMessage{
		ChatID:     event.SenderData.ChatID,
		SenderID:   event.SenderData.Sender,
		SenderName: senderName,
		Text:       event.MessageData.Text(),
		IsText:     event.MessageData.IsText(),
	})
}
