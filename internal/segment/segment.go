// Package segment splits mixed-script text into maximal same-script runs.
//
// Lesson scripts interleave Japanese and Latin text on a single line; a
// single TTS voice can only render one of them, so each line is broken
// into runs that a single voice profile can speak. Splitting is lossless:
// concatenating the runs in order reproduces the input exactly.
package segment

import "unicode"

type Script int

const (
	ScriptLatin Script = iota
	ScriptJapanese
)

func (s Script) String() string {
	switch s {
	case ScriptJapanese:
		return "japanese"
	default:
		return "latin"
	}
}

// Run is a maximal substring whose characters all belong to one script.
type Run struct {
	Text   string
	Script Script
}

// Split breaks text into ordered same-script runs. Script-neutral runes
// (whitespace, punctuation) attach to the preceding run, or to the
// following run at the start of the text, so no neutral class leaks to
// callers. Pure and total: no input fails.
func Split(text string) []Run {
	if text == "" {
		return nil
	}

	var (
		runs    []Run
		current []rune
		pending []rune // leading neutrals waiting for the first scripted rune
		script  Script
		started bool
	)

	for _, r := range text {
		s, neutral := classify(r)
		if neutral {
			if !started {
				pending = append(pending, r)
			} else {
				current = append(current, r)
			}
			continue
		}
		switch {
		case !started:
			current = append(pending, r)
			pending = nil
			script = s
			started = true
		case s == script:
			current = append(current, r)
		default:
			runs = append(runs, Run{Text: string(current), Script: script})
			current = []rune{r}
			script = s
		}
	}

	if !started {
		// Input was entirely neutral; emit it as one Latin run rather
		// than inventing a neutral class.
		return []Run{{Text: string(pending), Script: ScriptLatin}}
	}
	return append(runs, Run{Text: string(current), Script: script})
}

// classify reports the script of r, or neutral=true for runes that belong
// to no script (spaces, punctuation, digits shared by both systems).
func classify(r rune) (s Script, neutral bool) {
	if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) || r == 'ー' {
		return ScriptJapanese, false
	}
	if unicode.IsLetter(r) {
		return ScriptLatin, false
	}
	return 0, true
}
