package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/kotobalabs/kotoba-backend/internal/data/repos"
	types "github.com/kotobalabs/kotoba-backend/internal/domain"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/dbctx"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/platform/openai"
	"github.com/kotobalabs/kotoba-backend/internal/segment"
)

type GenerateLessonInput struct {
	Name    string
	Subject string
	// Observations optionally steer the lesson content.
	Observations string
}

// ManifestStore is the slice of the bucket the assembler needs to persist
// a lesson manifest.
type ManifestStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string, public bool) (string, error)
}

type LessonService interface {
	// Generate produces a lesson script, dispatches a synthesis job per
	// line, persists the lesson and its manifest, and returns the manifest
	// synchronously. Audio arrives asynchronously.
	Generate(ctx context.Context, in GenerateLessonInput) (*types.LessonManifest, error)

	Get(ctx context.Context, code string) (*types.Lesson, error)
}

type lessonService struct {
	log      *logger.Logger
	oracle   Oracle
	lessons  repos.LessonRepo
	dispatch DispatchService
	store    ManifestStore
}

func NewLessonService(baseLog *logger.Logger, oracle Oracle, lessons repos.LessonRepo, dispatch DispatchService, store ManifestStore) LessonService {
	return &lessonService{
		log:      baseLog.With("service", "LessonService"),
		oracle:   oracle,
		lessons:  lessons,
		dispatch: dispatch,
		store:    store,
	}
}

const lessonSystemPrompt = `You are a Japanese teacher writing a short spoken lesson.
Respond with a bare JSON array, no markdown, no commentary. Each element is
{"sequence": number, "text": string, "languageCode": "ja-JP" | "en-US"}.
Alternate English explanation lines with Japanese practice lines.`

// sanitizeLine strips quote characters that break filename and voice
// encoding downstream. Script content is left alone.
var sanitizeLine = strings.NewReplacer("'", "", `"`, "")

func (s *lessonService) Generate(ctx context.Context, in GenerateLessonInput) (*types.LessonManifest, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, fmt.Errorf("lesson generation requires a subject")
	}
	code := newLessonCode()

	var user strings.Builder
	fmt.Fprintf(&user, "Write a lesson about %q.", in.Subject)
	if in.Observations != "" {
		fmt.Fprintf(&user, " Learner notes: %s.", in.Observations)
	}

	raw, err := s.oracle.Completion(ctx, []openai.Message{
		{Role: "system", Content: lessonSystemPrompt},
		{Role: "user", Content: user.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("lesson generation: %w", err)
	}

	parsed, err := parseScriptLines(raw)
	if err != nil {
		return nil, err
	}

	lines := flattenScript(parsed)
	if len(lines) == 0 {
		return nil, &OracleFormatError{Cause: fmt.Errorf("script reduced to nothing after segmentation")}
	}

	queued := 0
	for _, line := range lines {
		if err := s.dispatch.DispatchLessonLine(ctx, code, line); err != nil {
			s.log.Warn("Lesson line dispatch failed", "code", code, "sequence", line.Sequence, "error", err)
			continue
		}
		queued++
	}

	manifest := &types.LessonManifest{
		Code:    code,
		Name:    in.Name,
		Subject: in.Subject,
		Lines:   lines,
		Total:   len(lines),
	}
	if err := s.persist(ctx, manifest); err != nil {
		return nil, err
	}

	s.log.Info("Lesson generated", "code", code, "lines", len(lines), "queued", queued)
	return manifest, nil
}

// flattenScript segments every source line, flattens the runs in order,
// and re-sequences 1..N. Segmentation order is authoritative; the source
// sequence numbers are discarded. A Japanese run always speaks ja-JP; a
// Latin run inherits the source line's language, except that Latin text
// inside a ja-JP line falls back to en-US.
func flattenScript(src []types.ScriptLine) []types.ScriptLine {
	var out []types.ScriptLine
	seq := 1
	for _, line := range src {
		for _, run := range segment.Split(line.Text) {
			text := strings.TrimSpace(sanitizeLine.Replace(run.Text))
			if text == "" {
				continue
			}
			lang := line.LanguageCode
			if run.Script == segment.ScriptJapanese {
				lang = "ja-JP"
			} else if lang == "ja-JP" {
				lang = "en-US"
			}
			out = append(out, types.ScriptLine{Sequence: seq, Text: text, LanguageCode: lang})
			seq++
		}
	}
	return out
}

// persist writes the lesson row and the manifest object. Both happen
// exactly once, after all dispatch attempts have been issued.
func (s *lessonService) persist(ctx context.Context, m *types.LessonManifest) error {
	rawLines, err := json.Marshal(m.Lines)
	if err != nil {
		return fmt.Errorf("encode lesson lines: %w", err)
	}

	lesson := &types.Lesson{
		ID:      uuid.New(),
		Code:    m.Code,
		Name:    m.Name,
		Subject: m.Subject,
		Total:   m.Total,
		Lines:   datatypes.JSON(rawLines),
	}
	if err := s.lessons.Create(dbctx.Context{Ctx: ctx}, lesson); err != nil {
		return fmt.Errorf("persist lesson %s: %w", m.Code, err)
	}

	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	key := fmt.Sprintf("%s/%s.json", LessonAudioFolder, m.Code)
	if _, err := s.store.Upload(ctx, key, bytes.NewReader(doc), "application/json", true); err != nil {
		return fmt.Errorf("persist manifest %s: %w", key, err)
	}
	return nil
}

func (s *lessonService) Get(ctx context.Context, code string) (*types.Lesson, error) {
	return s.lessons.GetByCode(dbctx.Context{Ctx: ctx}, code)
}

func newLessonCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
