package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/kotobalabs/kotoba-backend/internal/data/repos/cards"
	"github.com/kotobalabs/kotoba-backend/internal/data/repos/testutil"
	types "github.com/kotobalabs/kotoba-backend/internal/domain"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/dbctx"
	"github.com/kotobalabs/kotoba-backend/internal/synthesis"
)

func TestApplyCardCompletionWritesAudioURL(t *testing.T) {
	db := testutil.DB(t)
	repo := cards.NewFlashcardRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	card := &types.Flashcard{ID: uuid.New(), Hiragana: "こんにちは", Type: types.CardTypeWord}
	if err := repo.Create(dbc, card); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := NewConsumer(testutil.Logger(t), nil, repo)
	payload, _ := json.Marshal(synthesis.CompletionEvent{
		JobKey: "card-tts-" + card.ID.String(),
		CardID: card.ID.String(),
		URL:    "https://storage.googleapis.com/test/audio-cards/" + card.ID.String() + ".mp3",
	})
	if err := c.apply(context.Background(), synthesis.ChannelCardTTSCompleted, payload); err != nil {
		t.Fatalf("apply: %v", err)
	}

	got, err := repo.GetByID(dbc, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AudioURL == nil || *got.AudioURL == "" {
		t.Fatalf("audio url not written: %#v", got)
	}
}

func TestApplyRejectsMalformedEvents(t *testing.T) {
	c := NewConsumer(testutil.Logger(t), nil, nil)

	if err := c.apply(context.Background(), synthesis.ChannelCardTTSCompleted, []byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}

	payload, _ := json.Marshal(synthesis.CompletionEvent{CardID: uuid.NewString()})
	if err := c.apply(context.Background(), synthesis.ChannelCardTTSCompleted, payload); err == nil {
		t.Fatal("expected missing-url error")
	}

	payload, _ = json.Marshal(synthesis.CompletionEvent{CardID: "nope", URL: "https://x/y.mp3"})
	if err := c.apply(context.Background(), synthesis.ChannelCardTTSCompleted, payload); err == nil {
		t.Fatal("expected bad-card-id error")
	}
}

func TestApplyTerminalFailureLeavesAudioURLUnset(t *testing.T) {
	db := testutil.DB(t)
	repo := cards.NewFlashcardRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	card := &types.Flashcard{ID: uuid.New(), Hiragana: "さようなら", Type: types.CardTypeWord}
	if err := repo.Create(dbc, card); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := NewConsumer(testutil.Logger(t), nil, repo)
	payload, _ := json.Marshal(synthesis.CompletionEvent{
		JobKey: "card-tts-" + card.ID.String(),
		CardID: card.ID.String(),
		Failed: true,
		Error:  "tts: upstream returned 500",
	})
	if err := c.apply(context.Background(), synthesis.ChannelCardTTSCompleted, payload); err != nil {
		t.Fatalf("apply: %v", err)
	}

	got, err := repo.GetByID(dbc, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AudioURL != nil {
		t.Fatalf("audio url written for a failed job: %q", *got.AudioURL)
	}
}

func TestApplyLessonCompletionIsInformational(t *testing.T) {
	c := NewConsumer(testutil.Logger(t), nil, nil)
	payload, _ := json.Marshal(synthesis.CompletionEvent{
		JobKey:     "lesson-tts-abc123def0-001",
		LessonCode: "abc123def0",
		URL:        "https://x/abc123def0-001.mp3",
	})
	if err := c.apply(context.Background(), synthesis.ChannelLessonTTSCompleted, payload); err != nil {
		t.Fatalf("apply: %v", err)
	}
}
