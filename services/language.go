package services

import "strings"

// Lang identifies a reply language.
type Lang string

const (
	LangRU Lang = "ru"
	LangKZ Lang = "kz"
)

// Small per-language vocabularies; enough to separate Russian from Kazakh
// in short shop messages without a learned model.
var ruKeywords = map[string]struct{}{
	"привет": {}, "здравствуйте": {}, "добрый": {}, "день": {}, "вечер": {},
	"менеджер": {}, "купить": {}, "заказать": {}, "наличие": {}, "доставка": {},
	"бот": {}, "разговор": {}, "флакон": {}, "полный": {}, "объем": {},
	"переключить": {}, "связаться": {},
}

var kzKeywords = map[string]struct{}{
	"сәлем": {}, "қайырлы": {}, "күн": {}, "менеджер": {}, "сатып": {},
	"алу": {}, "бар": {}, "ма": {}, "жеткізу": {}, "бот": {}, "әңгіме": {},
	"флакон": {}, "толық": {}, "көлем": {}, "қосылу": {}, "байланыс": {},
}

// DetectLanguage picks the language whose vocabulary shares more words with
// the message. Ties and unknown words resolve to Russian, the shop's
// primary language.
func DetectLanguage(message string) Lang {
	words := strings.Fields(strings.ToLower(message))

	var ruMatches, kzMatches int
	for _, w := range words {
		if _, ok := ruKeywords[w]; ok {
			ruMatches++
		}
		if _, ok := kzKeywords[w]; ok {
			kzMatches++
		}
	}

	if kzMatches > ruMatches {
		return LangKZ
	}
	return LangRU
}
