package webhooks

// WebhookEvent is an inbound GreenAPI notification.
type WebhookEvent struct {
	TypeWebhook  string       `json:"typeWebhook"`
	InstanceData InstanceData `json:"instanceData"`
	Timestamp    int64        `json:"timestamp"`
	SenderData   SenderData   `json:"senderData"`
	MessageData  MessageData  `json:"messageData"`
}

// InstanceData identifies the WhatsApp instance the event came through.
type InstanceData struct {
	IDInstance   int64  `json:"idInstance"`
	WID          string `json:"wid"`
	TypeInstance string `json:"typeInstance"`
}

// SenderData identifies the chat and the sender.
type SenderData struct {
	ChatID     string `json:"chatId"`
	Sender     string `json:"sender"`
	SenderName string `json:"senderName"`
}

// MessageData holds the message payload. Only text payloads carry content
// the bot can route; everything else is treated as non-text.
type MessageData struct {
	TypeMessage             string                   `json:"typeMessage"`
	TextMessageData         *TextMessageData         `json:"textMessageData,omitempty"`
	ExtendedTextMessageData *ExtendedTextMessageData `json:"extendedTextMessageData,omitempty"`
}

type TextMessageData struct {
	TextMessage string `json:"textMessage"`
}

type ExtendedTextMessageData struct {
	Text string `json:"text"`
}

// Text extracts the message text for both plain and extended payloads.
func (m MessageData) Text() string {
	if m.TextMessageData != nil {
		return m.TextMessageData.TextMessage
	}
	if m.ExtendedTextMessageData != nil {
		return m.ExtendedTextMessageData.Text
	}
	return ""
}

// IsText reports whether the payload is a routable text message.
func (m MessageData) IsText() bool {
	return m.TypeMessage == "textMessage" || m.TypeMessage == "extendedTextMessage"
}

var validWebhookTypes = map[string]struct{}{
	"incomingMessageReceived":    {},
	"outgoingMessageStatus":      {},
	"outgoingAPIMessageReceived": {},
	"outgoingMessageReceived":    {},
	"quotaExceeded":              {},
	"stateInstanceChanged":       {},
}

// IsValid reports whether the event is a webhook type GreenAPI actually
// sends.
func (e WebhookEvent) IsValid() bool {
	_, ok := validWebhookTypes[e.TypeWebhook]
	return ok
}
