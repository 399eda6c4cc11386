package cards

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kotobalabs/kotoba-backend/internal/data/repos/testutil"
	types "github.com/kotobalabs/kotoba-backend/internal/domain"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/dbctx"
)

func seedCard(tb testing.TB, repo FlashcardRepo, dbc dbctx.Context, hiragana string, createdAt time.Time, audioURL *string) *types.Flashcard {
	tb.Helper()
	card := &types.Flashcard{
		ID:         uuid.New(),
		Hiragana:   hiragana,
		Meaning:    "meaning of " + hiragana,
		Type:       types.CardTypeWord,
		Complexity: 2,
		AudioURL:   audioURL,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if err := repo.Create(dbc, card); err != nil {
		tb.Fatalf("seed %q: %v", hiragana, err)
	}
	return card
}

func TestFlashcardRepoUniqueHiragana(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewFlashcardRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	seedCard(t, repo, dbc, "ねこ", now, nil)

	dup := &types.Flashcard{
		ID:         uuid.New(),
		Hiragana:   "ねこ",
		Meaning:    "cat again",
		Type:       types.CardTypeWord,
		Complexity: 2,
	}
	err := repo.Create(dbc, dup)
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}

	winner, err := repo.GetByHiragana(dbc, "ねこ")
	if err != nil {
		t.Fatalf("GetByHiragana: %v", err)
	}
	if winner == nil || winner.Meaning != "meaning of ねこ" {
		t.Fatalf("winner row: %#v", winner)
	}
}

func TestFlashcardRepoGetByHiraganaMissing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewFlashcardRepo(db, testutil.Logger(t))

	card, err := repo.GetByHiragana(dbc, "いぬ")
	if err != nil {
		t.Fatalf("GetByHiragana: %v", err)
	}
	if card != nil {
		t.Fatalf("expected nil for missing card, got %#v", card)
	}
}

func TestFlashcardRepoRecentHiragana(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewFlashcardRepo(db, testutil.Logger(t))

	base := time.Now().UTC().Add(-time.Hour)
	seedCard(t, repo, dbc, "ひとつ", base, nil)
	seedCard(t, repo, dbc, "ふたつ", base.Add(time.Minute), nil)
	seedCard(t, repo, dbc, "みっつ", base.Add(2*time.Minute), nil)

	got, err := repo.RecentHiragana(dbc, 2, 2)
	if err != nil {
		t.Fatalf("RecentHiragana: %v", err)
	}
	if len(got) != 2 || got[0] != "みっつ" || got[1] != "ふたつ" {
		t.Fatalf("expected newest-first page, got %v", got)
	}

	none, err := repo.RecentHiragana(dbc, 5, 10)
	if err != nil {
		t.Fatalf("RecentHiragana other complexity: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no rows for complexity 5, got %v", none)
	}
}

func TestFlashcardRepoListMissingAudioPaging(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewFlashcardRepo(db, testutil.Logger(t))

	url := "https://cdn.example.com/a.mp3"
	base := time.Now().UTC().Add(-time.Hour)
	seedCard(t, repo, dbc, "あ", base, nil)
	seedCard(t, repo, dbc, "い", base.Add(time.Minute), nil)
	seedCard(t, repo, dbc, "う", base.Add(2*time.Minute), &url)
	seedCard(t, repo, dbc, "え", base.Add(3*time.Minute), nil)

	first, err := repo.ListMissingAudio(dbc, 2, 0)
	if err != nil {
		t.Fatalf("ListMissingAudio page 1: %v", err)
	}
	if len(first) != 2 || first[0].Hiragana != "あ" || first[1].Hiragana != "い" {
		t.Fatalf("page 1: %#v", first)
	}

	second, err := repo.ListMissingAudio(dbc, 2, 2)
	if err != nil {
		t.Fatalf("ListMissingAudio page 2: %v", err)
	}
	if len(second) != 1 || second[0].Hiragana != "え" {
		t.Fatalf("page 2: %#v", second)
	}
}

func TestFlashcardRepoSetAudioURL(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewFlashcardRepo(db, testutil.Logger(t))

	card := seedCard(t, repo, dbc, "やま", time.Now().UTC(), nil)
	if err := repo.SetAudioURL(dbc, card.ID, "https://cdn.example.com/yama.mp3"); err != nil {
		t.Fatalf("SetAudioURL: %v", err)
	}

	got, err := repo.GetByID(dbc, card.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.AudioURL == nil || *got.AudioURL != "https://cdn.example.com/yama.mp3" {
		t.Fatalf("audio url not set: %#v", got)
	}

	missing, err := repo.ListMissingAudio(dbc, 10, 0)
	if err != nil {
		t.Fatalf("ListMissingAudio: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected no missing-audio rows, got %d", len(missing))
	}
}
