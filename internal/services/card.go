package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kotobalabs/kotoba-backend/internal/data/repos"
	types "github.com/kotobalabs/kotoba-backend/internal/domain"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/dbctx"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/platform/openai"
	"github.com/kotobalabs/kotoba-backend/internal/reading"
)

type GenerateCardsInput struct {
	Quantity   int
	Complexity int
	// Context optionally steers the prompt toward a theme.
	Context string
}

type CardService interface {
	// Generate asks the oracle for card suggestions, persists the new ones
	// with a derived reading, and dispatches synthesis for each. Cards
	// whose hiragana already exists are reused, not duplicated.
	Generate(ctx context.Context, in GenerateCardsInput) ([]*types.Flashcard, error)

	// Explain returns an explanation for one card, generating and caching
	// it on first request.
	Explain(ctx context.Context, cardID uuid.UUID) (string, error)

	// Reconcile pages through cards missing audio and dispatches one job
	// per card. It returns how many jobs were queued and never fails the
	// caller; errors shorten the queued set.
	Reconcile(ctx context.Context) int

	// StartReconciliation runs Reconcile in the background. Bootstrap
	// calls this once after the worker is up.
	StartReconciliation(ctx context.Context)
}

type cardService struct {
	log        *logger.Logger
	oracle     Oracle
	cards      repos.FlashcardRepo
	readings   reading.Service
	dispatch   DispatchService
	sweepBatch int
}

func NewCardService(baseLog *logger.Logger, oracle Oracle, cards repos.FlashcardRepo, readings reading.Service, dispatch DispatchService, sweepBatch int) CardService {
	if sweepBatch <= 0 {
		sweepBatch = 200
	}
	return &cardService{
		log:        baseLog.With("service", "CardService"),
		oracle:     oracle,
		cards:      cards,
		readings:   readings,
		dispatch:   dispatch,
		sweepBatch: sweepBatch,
	}
}

const cardSystemPrompt = `You are a Japanese teacher creating study flashcards.
Respond with a bare JSON array, no markdown, no commentary. Each element is
{"hiragana": string, "meaning": string, "type": "WORD" | "PHRASE"}.`

func (s *cardService) Generate(ctx context.Context, in GenerateCardsInput) ([]*types.Flashcard, error) {
	if in.Quantity <= 0 {
		in.Quantity = 5
	}
	dbc := dbctx.Context{Ctx: ctx}

	recent, err := s.cards.RecentHiragana(dbc, in.Complexity, 50)
	if err != nil {
		s.log.Warn("Could not load recent cards for prompt", "error", err)
		recent = nil
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Create %d flashcards at complexity level %d.", in.Quantity, in.Complexity)
	if in.Context != "" {
		fmt.Fprintf(&user, " Theme: %s.", in.Context)
	}
	if len(recent) > 0 {
		fmt.Fprintf(&user, " Do not repeat any of: %s.", strings.Join(recent, ", "))
	}

	raw, err := s.oracle.Completion(ctx, []openai.Message{
		{Role: "system", Content: cardSystemPrompt},
		{Role: "user", Content: user.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("card generation: %w", err)
	}

	suggestions, err := parseCardSuggestions(raw)
	if err != nil {
		return nil, err
	}

	out := make([]*types.Flashcard, 0, len(suggestions))
	for _, sg := range suggestions {
		card, err := s.materialize(ctx, dbc, sg, in.Complexity)
		if err != nil {
			s.log.Warn("Card suggestion skipped", "hiragana", sg.Hiragana, "error", err)
			continue
		}
		out = append(out, card)
	}
	return out, nil
}

// materialize persists one suggestion, collapsing duplicates onto the
// existing row. Only freshly created cards get a synthesis job; existing
// ones already had their shot (or the sweep will catch them).
func (s *cardService) materialize(ctx context.Context, dbc dbctx.Context, sg cardSuggestion, complexity int) (*types.Flashcard, error) {
	hiragana := strings.TrimSpace(sg.Hiragana)

	existing, err := s.cards.GetByHiragana(dbc, hiragana)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Info("Duplicate card reused", "hiragana", hiragana, "card_id", existing.ID)
		return existing, nil
	}

	card := &types.Flashcard{
		ID:         uuid.New(),
		Hiragana:   hiragana,
		Meaning:    strings.TrimSpace(sg.Meaning),
		Type:       parseCardType(sg.Type),
		Complexity: complexity,
		Reading:    s.deriveReading(hiragana),
	}

	if err := s.cards.Create(dbc, card); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent generation of the same content.
			// The winner's row is the card.
			winner, readErr := s.cards.GetByHiragana(dbc, hiragana)
			if readErr != nil || winner == nil {
				return nil, fmt.Errorf("re-read after duplicate: %w", readErr)
			}
			s.log.Info("Duplicate card reused", "hiragana", hiragana, "card_id", winner.ID)
			return winner, nil
		}
		return nil, err
	}

	if err := s.dispatch.DispatchCard(ctx, card); err != nil {
		s.log.Warn("Card synthesis dispatch failed", "card_id", card.ID, "error", err)
	}
	return card, nil
}

func (s *cardService) deriveReading(text string) string {
	if s.readings == nil {
		return ""
	}
	return s.readings.Reading(text)
}

func parseCardType(raw string) types.CardType {
	if strings.EqualFold(strings.TrimSpace(raw), string(types.CardTypePhrase)) {
		return types.CardTypePhrase
	}
	return types.CardTypeWord
}

func (s *cardService) Explain(ctx context.Context, cardID uuid.UUID) (string, error) {
	dbc := dbctx.Context{Ctx: ctx}
	card, err := s.cards.GetByID(dbc, cardID)
	if err != nil {
		return "", err
	}
	if card == nil {
		return "", fmt.Errorf("card %s not found", cardID)
	}
	if card.Explanation != nil && *card.Explanation != "" {
		return *card.Explanation, nil
	}

	explanation, err := s.oracle.Completion(ctx, []openai.Message{
		{Role: "system", Content: "You are a Japanese teacher. Explain usage and nuance in plain English prose."},
		{Role: "user", Content: fmt.Sprintf("Explain %q (%s).", card.Hiragana, card.Meaning)},
	})
	if err != nil {
		return "", fmt.Errorf("explain card %s: %w", cardID, err)
	}

	if err := s.cards.SetExplanation(dbc, card.ID, explanation); err != nil {
		s.log.Warn("Could not cache explanation", "card_id", card.ID, "error", err)
	}
	return explanation, nil
}

func (s *cardService) Reconcile(ctx context.Context) int {
	dbc := dbctx.Context{Ctx: ctx}
	queued := 0
	offset := 0
	for {
		page, err := s.cards.ListMissingAudio(dbc, s.sweepBatch, offset)
		if err != nil {
			s.log.Warn("Reconciliation query failed", "offset", offset, "error", err)
			break
		}
		if len(page) == 0 {
			break
		}
		n, err := s.dispatch.DispatchCards(ctx, page)
		queued += n
		if err != nil {
			s.log.Warn("Reconciliation dispatch incomplete", "error", err)
		}
		if len(page) < s.sweepBatch {
			break
		}
		offset += len(page)
	}
	s.log.Info("Audio reconciliation sweep finished", "queued", queued)
	return queued
}

func (s *cardService) StartReconciliation(ctx context.Context) {
	go s.Reconcile(ctx)
}
