package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const greenAPIBase = "https://api.green-api.com"

// GreenAPI delivers outbound WhatsApp messages through the GreenAPI
// gateway.
type GreenAPI struct {
	instanceID string
	apiToken   string
	client     *http.Client
}

func NewGreenAPI(instanceID, apiToken string) *GreenAPI {
	return &GreenAPI{
		instanceID: instanceID,
		apiToken:   apiToken,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendMessage sends a text message to a WhatsApp chat. The chat ID is
// normalized to GreenAPI's "<number>@c.us" form.
func (g *GreenAPI) SendMessage(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("%s/waInstance%s/SendMessage/%s", greenAPIBase, g.instanceID, g.apiToken)

	payload := map[string]string{
		"chatId":  NormalizeChatID(chatID),
		"message": text,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("Failed to send WhatsApp message", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("failed to send message: %s", resp.Status)
	}

	return nil
}

// NormalizeChatID strips a leading "+" and appends the personal-chat suffix
// when no suffix is present.
func NormalizeChatID(chatID string) string {
	id := strings.TrimSpace(strings.ReplaceAll(chatID, "+", ""))
	if strings.HasSuffix(id, "@c.us") || strings.HasSuffix(id, "@g.us") {
		return id
	}
	return id + "@c.us"
}

var (
	bracketNotes = regexp.MustCompile(`【.*?】`)
	doubleBold   = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// FormatWhatsAppText adapts model output to WhatsApp formatting: citation
// brackets are dropped and **bold** becomes *bold*.
func FormatWhatsAppText(text string) string {
	if text == "" {
		return ""
	}
	text = bracketNotes.ReplaceAllString(text, "")
	text = doubleBold.ReplaceAllString(text, "*$1*")
	return strings.TrimSpace(text)
}
