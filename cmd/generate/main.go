// Command generate triggers content generation from the command line:
// a batch of flashcards or one lesson, through the same service layer the
// running backend uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kotobalabs/kotoba-backend/internal/app"
	"github.com/kotobalabs/kotoba-backend/internal/services"
)

func main() {
	var (
		cards      = flag.Int("cards", 0, "number of flashcards to generate")
		complexity = flag.Int("complexity", 1, "card complexity level")
		theme      = flag.String("theme", "", "optional card theme")
		lesson     = flag.Bool("lesson", false, "generate a lesson")
		name       = flag.String("name", "", "lesson name")
		subject    = flag.String("subject", "", "lesson subject")
		notes      = flag.String("notes", "", "optional learner notes")
	)
	flag.Parse()

	if *cards <= 0 && !*lesson {
		fmt.Println("nothing to do: pass -cards N or -lesson -subject ...")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if *cards > 0 {
		generated, err := a.Services.Card.Generate(ctx, services.GenerateCardsInput{
			Quantity:   *cards,
			Complexity: *complexity,
			Context:    *theme,
		})
		if err != nil {
			a.Log.Error("Card generation failed", "error", err)
			os.Exit(1)
		}
		for _, c := range generated {
			fmt.Printf("%s\t%s\t%s\n", c.ID, c.Hiragana, c.Meaning)
		}
	}

	if *lesson {
		m, err := a.Services.Lesson.Generate(ctx, services.GenerateLessonInput{
			Name:         *name,
			Subject:      *subject,
			Observations: *notes,
		})
		if err != nil {
			a.Log.Error("Lesson generation failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("lesson %s: %d lines\n", m.Code, m.Total)
		for _, line := range m.Lines {
			fmt.Printf("%3d  %-6s  %s\n", line.Sequence, line.LanguageCode, line.Text)
		}
	}
}
