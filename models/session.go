package models

import "time"

// ChatMode tells whether the bot answers a user automatically or a human
// manager owns the conversation.
type ChatMode string

const (
	ModeBot     ChatMode = "bot"
	ModeManager ChatMode = "manager"
)

// Turn is one exchanged (user message, bot response) pair.
type Turn struct {
	UserMessage string    `bson:"user_message" json:"user_message"`
	BotResponse string    `bson:"bot_response" json:"bot_response"`
	At          time.Time `bson:"at" json:"at"`
}

// Session is the per-user conversation record. LastProduct is a value copy
// of a catalog entry, so catalog refreshes never invalidate it.
type Session struct {
	UserID      string    `bson:"user_id" json:"user_id"`
	Mode        ChatMode  `bson:"mode" json:"mode"`
	Welcomed    bool      `bson:"welcomed" json:"welcomed"`
	LastProduct *Product  `bson:"last_product,omitempty" json:"last_product,omitempty"`
	History     []Turn    `bson:"history" json:"history"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
