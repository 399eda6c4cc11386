// Package voice maps language codes to TTS voice profiles.
package voice

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile selects the synthesis voice for one language.
type Profile struct {
	LanguageCode string  `yaml:"language_code"`
	Model        string  `yaml:"model"`
	Name         string  `yaml:"name"`
	Speed        float64 `yaml:"speed"`
	Format       string  `yaml:"format"`
}

// UnknownVoiceError reports a language code with no profile mapping.
// Dispatch fails closed on it; there is no silent default voice.
type UnknownVoiceError struct {
	LanguageCode string
}

func (e *UnknownVoiceError) Error() string {
	return fmt.Sprintf("no voice profile mapped for language code %q", e.LanguageCode)
}

// Map is an immutable language-code to profile table. Construct it once at
// bootstrap and inject it; never mutate it after.
type Map struct {
	profiles map[string]Profile
}

func NewMap(profiles map[string]Profile) Map {
	cp := make(map[string]Profile, len(profiles))
	for code, p := range profiles {
		cp[code] = p
	}
	return Map{profiles: cp}
}

// DefaultMap covers every language code the lesson prompt can produce.
// "US-en" is kept as an alias because the oracle occasionally emits it in
// place of "en-US".
func DefaultMap() Map {
	enUS := Profile{LanguageCode: "en-US", Model: "tts-1", Name: "alloy", Speed: 1.0, Format: "mp3"}
	jaJP := Profile{LanguageCode: "ja-JP", Model: "tts-1", Name: "nova", Speed: 0.9, Format: "mp3"}
	return NewMap(map[string]Profile{
		"en-US": enUS,
		"US-en": enUS,
		"ja-JP": jaJP,
	})
}

// Load reads a YAML file of the form {code: profile}. Profiles omitted
// from the file fall back to nothing: the returned map contains exactly
// what the file declares.
func Load(path string) (Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Map{}, fmt.Errorf("read voice map %s: %w", path, err)
	}
	var profiles map[string]Profile
	if err := yaml.Unmarshal(raw, &profiles); err != nil {
		return Map{}, fmt.Errorf("parse voice map %s: %w", path, err)
	}
	if len(profiles) == 0 {
		return Map{}, fmt.Errorf("voice map %s declares no profiles", path)
	}
	for code, p := range profiles {
		if p.LanguageCode == "" {
			p.LanguageCode = code
		}
		if p.Format == "" {
			p.Format = "mp3"
		}
		if p.Speed == 0 {
			p.Speed = 1.0
		}
		profiles[code] = p
	}
	return NewMap(profiles), nil
}

// Lookup resolves a language code, failing closed on unmapped codes.
func (m Map) Lookup(code string) (Profile, error) {
	p, ok := m.profiles[code]
	if !ok {
		return Profile{}, &UnknownVoiceError{LanguageCode: code}
	}
	return p, nil
}

func (m Map) Codes() []string {
	out := make([]string, 0, len(m.profiles))
	for code := range m.profiles {
		out = append(out, code)
	}
	return out
}
