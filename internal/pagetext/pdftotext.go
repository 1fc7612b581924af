package pagetext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Extractor converts a PDF on disk into per-page text via pdftotext.
type Extractor struct {
	bin    string
	runner Runner
	logger *slog.Logger
}

func NewExtractor(bin string, logger *slog.Logger) *Extractor {
	if bin == "" {
		bin = "pdftotext"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{bin: bin, runner: execRunner{logger: logger}, logger: logger}
}

// NewExtractorWithRunner is for tests that stub the external command.
func NewExtractorWithRunner(bin string, r Runner, logger *slog.Logger) *Extractor {
	e := NewExtractor(bin, logger)
	e.runner = r
	return e
}

// Pages extracts the document into ordered page texts. A document pdftotext
// cannot read is a hard error; there is no silent empty-text fallback.
func (e *Extractor) Pages(ctx context.Context, path string) (Source, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext %s: %w (%s)", path, err, truncate(string(errb), 1<<10))
	}
	// A form-feed \f is used as page separator by default
	pages := strings.Split(string(out), "\f")
	e.logger.Debug("pagetext.extracted", "path", path, "pages", len(pages))
	return Memory(pages), nil
}
