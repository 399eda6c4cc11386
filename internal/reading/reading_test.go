package reading

import (
	"testing"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
)

func TestKatakanaToHiragana(t *testing.T) {
	cases := map[string]string{
		"コンニチハ": "こんにちは",
		"コーヒー":  "こーひー",
		"すし":    "すし",
		"ABC":   "ABC",
		"":      "",
	}
	for in, want := range cases {
		if got := katakanaToHiragana(in); got != want {
			t.Fatalf("katakanaToHiragana(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadingHiraganaIdentity(t *testing.T) {
	svc, err := NewService(logger.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if got := svc.Reading("こんにちは"); got != "こんにちは" {
		t.Fatalf("Reading: %q", got)
	}
}

func TestReadingEmpty(t *testing.T) {
	svc, err := NewService(logger.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if got := svc.Reading("   "); got != "" {
		t.Fatalf("Reading: %q", got)
	}
}
