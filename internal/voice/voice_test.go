package voice

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMapCoversPromptLanguages(t *testing.T) {
	m := DefaultMap()
	for _, code := range []string{"ja-JP", "en-US", "US-en"} {
		if _, err := m.Lookup(code); err != nil {
			t.Fatalf("Lookup(%q): %v", code, err)
		}
	}
}

func TestLookupUnknownFailsClosed(t *testing.T) {
	m := DefaultMap()
	_, err := m.Lookup("xx-XX")
	if err == nil {
		t.Fatal("expected error for unmapped code")
	}
	var uv *UnknownVoiceError
	if !errors.As(err, &uv) {
		t.Fatalf("expected UnknownVoiceError, got %T", err)
	}
	if uv.LanguageCode != "xx-XX" {
		t.Fatalf("error carries wrong code: %q", uv.LanguageCode)
	}
}

func TestNewMapCopiesInput(t *testing.T) {
	src := map[string]Profile{"ja-JP": {LanguageCode: "ja-JP", Name: "nova"}}
	m := NewMap(src)
	src["ja-JP"] = Profile{LanguageCode: "ja-JP", Name: "changed"}
	p, err := m.Lookup("ja-JP")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Name != "nova" {
		t.Fatalf("map shares storage with caller: %q", p.Name)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voices.yaml")
	doc := []byte(`
ja-JP:
  model: tts-1-hd
  name: shimmer
  speed: 0.8
en-US:
  model: tts-1
  name: alloy
`)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ja, err := m.Lookup("ja-JP")
	if err != nil {
		t.Fatalf("Lookup ja-JP: %v", err)
	}
	if ja.Name != "shimmer" || ja.Model != "tts-1-hd" || ja.Speed != 0.8 {
		t.Fatalf("ja profile: %#v", ja)
	}
	if ja.LanguageCode != "ja-JP" {
		t.Fatalf("language code not defaulted from key: %#v", ja)
	}
	if ja.Format != "mp3" {
		t.Fatalf("format not defaulted: %#v", ja)
	}
	en, err := m.Lookup("en-US")
	if err != nil {
		t.Fatalf("Lookup en-US: %v", err)
	}
	if en.Speed != 1.0 {
		t.Fatalf("speed not defaulted: %#v", en)
	}
}

func TestLoadRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voices.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty voice map")
	}
}
