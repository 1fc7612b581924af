// Package excerpt bounds a document's leading pages into the text window used
// as a training prompt.
package excerpt

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirjasto-labs/metacorpus/internal/pagetext"
)

// Options carries the excerpt bounds. All four come from configuration.
type Options struct {
	MaxPages  int
	Margin    int
	TextMin   int
	TextLimit int
}

// Excerpt is the bounded text drawn from a document's leading pages.
type Excerpt struct {
	Pages     []string
	WordCount int
}

// Text joins the accepted pages in original order.
func (e Excerpt) Text() string {
	return strings.Join(e.Pages, "\n")
}

// Extract walks candidate pages in order, accepting a page only while the
// running word count stays under TextLimit. A rejected page does not end the
// walk; later candidates within the margin are still considered. The walk
// stops once MaxPages pages are accepted or the running total reaches
// TextMin. An empty excerpt is a legal outcome, not an error.
func Extract(src pagetext.Source, opts Options, logger *slog.Logger) (Excerpt, error) {
	if logger == nil {
		logger = slog.Default()
	}

	candidates := opts.MaxPages + opts.Margin
	if n := src.NumPages(); n < candidates {
		candidates = n
	}

	var ex Excerpt
	for i := 0; i < candidates; i++ {
		text, err := src.Page(i)
		if err != nil {
			return Excerpt{}, fmt.Errorf("read page %d: %w", i, err)
		}
		words := len(strings.Fields(strings.TrimSpace(text)))

		if ex.WordCount+words < opts.TextLimit {
			ex.Pages = append(ex.Pages, text)
			ex.WordCount += words
		} else {
			logger.Debug("excerpt.page.skip",
				"page", i,
				"page_words", words,
				"running_words", ex.WordCount,
				"limit", opts.TextLimit,
			)
		}

		if len(ex.Pages) >= opts.MaxPages || ex.WordCount >= opts.TextMin {
			break
		}
	}
	return ex, nil
}
