// Package reading derives kana readings for Japanese text using a
// morphological analyzer. Readings are stored alongside flashcards so the
// client can render furigana without a round trip.
package reading

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
)

type Service interface {
	// Reading returns the hiragana reading of text. Tokens the dictionary
	// cannot resolve pass through unchanged.
	Reading(text string) string
}

type service struct {
	log *logger.Logger
	tok *tokenizer.Tokenizer
}

func NewService(baseLog *logger.Logger) (Service, error) {
	tok, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}
	return &service{
		log: baseLog.With("service", "ReadingService"),
		tok: tok,
	}, nil
}

func (s *service) Reading(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	for _, token := range s.tok.Tokenize(text) {
		if r, ok := token.Reading(); ok {
			b.WriteString(katakanaToHiragana(r))
			continue
		}
		b.WriteString(token.Surface)
	}
	return b.String()
}

// katakanaToHiragana folds katakana into hiragana. The prolonged sound
// mark and anything outside the katakana block are kept as is.
func katakanaToHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ァ' && r <= 'ヶ' {
			return r - 0x60
		}
		return r
	}, s)
}
