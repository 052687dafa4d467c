package catalog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxRecordSize bounds a single record line when Loader.MaxRecordSize
// is unset.
const DefaultMaxRecordSize = 64 * 1024

// Loader reads a data directory of item files and their review files.
type Loader struct {
	Parser             *Parser
	Store              Store
	Log                *zap.Logger
	ItemFilePrefix     string
	ReviewFileTemplate string

	// Lines longer than MaxRecordSize are skipped on their own.
	MaxRecordSize int
}

// LoadDir inserts every parseable item found in dir and returns how many
// were added. Malformed records are logged and skipped.
func (l *Loader) LoadDir(ctx context.Context, dir string) (int, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read data dir: %w", err)
	}

	loaded := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasPrefix(f.Name(), l.ItemFilePrefix) {
			continue
		}

		it, ok := l.loadItem(filepath.Join(dir, f.Name()))
		if !ok {
			continue
		}
		reviews := l.loadReviews(dir, it.ID())

		if _, inserted := l.Store.Insert(ctx, it, reviews); inserted {
			loaded++
		} else {
			l.Log.Warn("duplicate item id ignored",
				zap.Int("id", it.ID()),
				zap.String("file", f.Name()),
			)
		}
	}
	return loaded, nil
}

func (l *Loader) loadItem(path string) (Item, bool) {
	line, err := firstLine(path, l.maxRecordSize())
	if err != nil {
		l.Log.Warn("error loading item", zap.String("file", path), zap.Error(err))
		return Item{}, false
	}

	it, err := l.Parser.ParseItem(line)
	if err != nil {
		l.Log.Warn("error parsing item", zap.String("file", path), zap.Error(err))
		return Item{}, false
	}
	return it, true
}

func (l *Loader) loadReviews(dir string, id int) []Review {
	path := filepath.Join(dir, fmt.Sprintf(l.ReviewFileTemplate, id))

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return []Review{}
	}
	if err != nil {
		l.Log.Warn("error loading reviews", zap.String("file", path), zap.Error(err))
		return []Review{}
	}
	defer f.Close()

	reviews := make([]Review, 0, 8)
	err = eachRecord(f, l.maxRecordSize(), func(line string, err error) bool {
		if err == nil {
			if strings.TrimSpace(line) == "" {
				return true
			}
			var rv Review
			if rv, err = l.Parser.ParseReview(line); err == nil {
				reviews = append(reviews, rv)
				return true
			}
		}
		l.Log.Warn("error parsing review", zap.String("file", path), zap.Error(err))
		return true
	})
	if err != nil {
		l.Log.Warn("error reading reviews", zap.String("file", path), zap.Error(err))
	}
	return reviews
}

func (l *Loader) maxRecordSize() int {
	if l.MaxRecordSize > 0 {
		return l.MaxRecordSize
	}
	return DefaultMaxRecordSize
}

func firstLine(path string, limit int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var (
		line    string
		lineErr = errors.New("empty file")
	)
	err = eachRecord(f, limit, func(l string, err error) bool {
		line, lineErr = l, err
		return false
	})
	if err != nil {
		return "", err
	}
	return line, lineErr
}

// eachRecord calls fn for every line of r until fn returns false. A line that
// does not fit in limit bytes is consumed and passed to fn as an error
// wrapping ErrParseSkipped; reading carries on with the next line.
func eachRecord(r io.Reader, limit int, fn func(line string, err error) bool) error {
	br := bufio.NewReaderSize(r, limit)
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !isPrefix {
			if !fn(string(chunk), nil) {
				return nil
			}
			continue
		}

		size := len(chunk)
		for isPrefix && err == nil {
			chunk, isPrefix, err = br.ReadLine()
			size += len(chunk)
		}
		if err != nil && err != io.EOF {
			return err
		}
		if !fn("", fmt.Errorf("%w: record of %d bytes exceeds %d", ErrParseSkipped, size, limit)) {
			return nil
		}
	}
}
