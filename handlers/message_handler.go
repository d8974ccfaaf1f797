package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"perfume-bot/models"
	"perfume-bot/services"
)

// Sender delivers outbound WhatsApp messages.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// IncomingMessage is one inbound message normalized by the webhook layer.
type IncomingMessage struct {
	ChatID     string
	SenderID   string
	SenderName string
	Text       string
	IsText     bool
}

// Bot wires the intent router, session manager and transport into one
// per-message entry point. managerID is the manager's WhatsApp chat,
// notified whenever a conversation is handed off.
type Bot struct {
	router    *services.Router
	sessions  *services.SessionManager
	sender    Sender
	managerID string
}

func NewBot(router *services.Router, sessions *services.SessionManager, sender Sender, managerID string) *Bot {
	return &Bot{
		router:    router,
		sessions:  sessions,
		sender:    sender,
		managerID: managerID,
	}
}

// HandleIncoming processes one message end to end: route, format, deliver.
// Turns for the same user are serialized by the session lock; different
// users proceed concurrently.
func (b *Bot) HandleIncoming(msg IncomingMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	b.sessions.Lock(msg.SenderID)
	defer b.sessions.Unlock(msg.SenderID)

	slog.Info("Handling message",
		"senderID", msg.SenderID,
		"senderName", msg.SenderName,
		"isText", msg.IsText,
	)

	wasManager := false
	if mode, err := b.sessions.Mode(ctx, msg.SenderID); err == nil {
		wasManager = mode == models.ModeManager
	}

	reply, err := b.router.Respond(ctx, services.Inbound{
		UserID:     msg.SenderID,
		SenderName: msg.SenderName,
		Text:       msg.Text,
		IsText:     msg.IsText,
	})
	if err != nil {
		// The router absorbs turn failures itself; an error here means
		// session storage is down. The user still gets an answer.
		slog.Error("Routing failed", "senderID", msg.SenderID, "error", err)
		reply = ""
	}

	if reply == "" {
		b.sendManagerStandby(ctx, msg)
		return
	}

	formatted := services.FormatWhatsAppText(reply)
	if err := b.sender.SendMessage(ctx, msg.ChatID, formatted); err != nil {
		slog.Error("Failed to send reply", "senderID", msg.SenderID, "error", err)
		return
	}

	slog.Info("Reply sent", "senderID", msg.SenderID, "length", len(formatted))

	if !wasManager {
		b.notifyManagerHandoff(ctx, msg)
	}
}

// notifyManagerHandoff pings the manager's own chat when this turn handed
// the conversation off, so a human picks it up without polling.
func (b *Bot) notifyManagerHandoff(ctx context.Context, msg IncomingMessage) {
	if b.managerID == "" {
		return
	}
	mode, err := b.sessions.Mode(ctx, msg.SenderID)
	if err != nil || mode != models.ModeManager {
		return
	}

	text := msg.Text
	if !msg.IsText {
		text = "[вложение]"
	}
	note := fmt.Sprintf("Клиент %s (%s) ожидает менеджера.\nПоследнее сообщение: %s",
		msg.SenderName, msg.SenderID, text)
	if err := b.sender.SendMessage(ctx, b.managerID, note); err != nil {
		slog.Error("Failed to notify manager", "senderID", msg.SenderID, "error", err)
	}
}

// sendManagerStandby delivers the standing "a manager will answer"
// acknowledgment for users whose conversation a human owns.
func (b *Bot) sendManagerStandby(ctx context.Context, msg IncomingMessage) {
	mode, err := b.sessions.Mode(ctx, msg.SenderID)
	if err != nil {
		slog.Error("Failed to read session mode", "senderID", msg.SenderID, "error", err)
		return
	}
	if mode != models.ModeManager {
		return
	}

	standby := services.ManagerStandby(services.DetectLanguage(msg.Text))
	if err := b.sender.SendMessage(ctx, msg.ChatID, standby); err != nil {
		slog.Error("Failed to send standby notice", "senderID", msg.SenderID, "error", err)
	}
}
