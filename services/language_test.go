package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Lang
	}{
		{"russian greeting", "привет как дела", LangRU},
		{"kazakh greeting", "сәлем қайырлы күн", LangKZ},
		{"empty message defaults to russian", "", LangRU},
		{"unknown words default to russian", "sauvage dior", LangRU},
		{"tie resolves to russian", "менеджер", LangRU},
		{"kazakh delivery question", "жеткізу бар ма", LangKZ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.message))
		})
	}
}
