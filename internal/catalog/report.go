package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultReportFileTemplate = "product%d_%s_report.txt"

// Reporter renders one item with its reviews and writes the text to a
// per-(item, client) file in Dir.
type Reporter struct {
	Store        Store
	Formatters   *Formatters
	Log          *zap.Logger
	Dir          string
	FileTemplate string
	Now          func() time.Time
}

// Report returns the rendered text. The item and its reviews are copied
// under the store's read lock; rendering and file output happen after it is
// released. A failed file write still returns the text, together with an
// error wrapping ErrPersistence.
func (r *Reporter) Report(ctx context.Context, id int, languageTag, client string) (string, error) {
	it, reviews, err := r.Store.ItemWithReviews(ctx, id)
	if err != nil {
		r.Log.Info("report skipped", zap.Int("id", id), zap.Error(err))
		return "", err
	}

	text := r.Render(it, reviews, r.Formatters.Get(languageTag))

	path := r.path(id, client)
	if err := r.write(path, text); err != nil {
		r.Log.Error("error writing report",
			zap.Int("id", id),
			zap.String("client", client),
			zap.String("file", path),
			zap.Error(err),
		)
		return text, fmt.Errorf("write report %s: %w: %v", path, ErrPersistence, err)
	}
	return text, nil
}

func (r *Reporter) Render(it Item, reviews []Review, f Formatter) string {
	var sb strings.Builder
	sb.WriteString(r.Line(it, f))
	sb.WriteByte('\n')

	if len(reviews) == 0 {
		sb.WriteString(f.Text(TextNoReviews))
		sb.WriteByte('\n')
		return sb.String()
	}
	for _, rv := range SortReviews(reviews) {
		sb.WriteString(formatReview(f, rv))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Line renders the single header line for it.
func (r *Reporter) Line(it Item, f Formatter) string {
	return formatItem(f, it, r.now())
}

func (r *Reporter) path(id int, client string) string {
	tmpl := r.FileTemplate
	if tmpl == "" {
		tmpl = DefaultReportFileTemplate
	}
	return filepath.Join(r.Dir, fmt.Sprintf(tmpl, id, sanitizeClient(client)))
}

func (r *Reporter) write(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

func (r *Reporter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// sanitizeClient keeps client tags from escaping the reports directory.
func sanitizeClient(client string) string {
	client = strings.Map(func(c rune) rune {
		if c == '/' || c == '\\' || c == os.PathSeparator {
			return '_'
		}
		return c
	}, client)
	if client == "" || client == "." || client == ".." {
		return "anonymous"
	}
	return client
}
