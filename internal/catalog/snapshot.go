package catalog

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"
)

const (
	snapshotVersion = 1
	snapshotSuffix  = ".tmp"
	dateLayout      = "2006-01-02"
)

// SnapshotSink stores encoded snapshots. Load returns the most recent blob or
// an error wrapping ErrNoSnapshot.
type SnapshotSink interface {
	Save(ctx context.Context, blob []byte) error
	Load(ctx context.Context) ([]byte, error)
}

type itemRecord struct {
	Kind       string          `json:"kind"`
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Rating     int             `json:"rating"`
	BestBefore string          `json:"best_before,omitempty"`
}

type reviewRecord struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type entryRecord struct {
	Item    itemRecord     `json:"item"`
	Reviews []reviewRecord `json:"reviews"`
}

type envelope struct {
	Version  int             `json:"version"`
	Checksum string          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

func EncodeSnapshot(s Snapshot) ([]byte, error) {
	records := make([]entryRecord, 0, len(s.Entries))
	for _, e := range s.Entries {
		rec := entryRecord{
			Item: itemRecord{
				Kind:   e.Item.kind.Tag(),
				ID:     e.Item.id,
				Name:   e.Item.name,
				Price:  e.Item.price,
				Rating: int(e.Item.rating),
			},
			Reviews: make([]reviewRecord, 0, len(e.Reviews)),
		}
		if e.Item.kind == KindFood {
			rec.Item.BestBefore = e.Item.bestBefore.Format(dateLayout)
		}
		for _, rv := range e.Reviews {
			rec.Reviews = append(rec.Reviews, reviewRecord{Rating: int(rv.rating), Comment: rv.comment})
		}
		records = append(records, rec)
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return json.Marshal(envelope{
		Version:  snapshotVersion,
		Checksum: checksum(payload),
		Payload:  payload,
	})
}

func DecodeSnapshot(blob []byte) (Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != snapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", env.Version)
	}
	if checksum(env.Payload) != env.Checksum {
		return Snapshot{}, errors.New("snapshot checksum mismatch")
	}

	var records []entryRecord
	if err := json.Unmarshal(env.Payload, &records); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal payload: %w", err)
	}

	out := Snapshot{Entries: make([]Entry, 0, len(records))}
	for _, rec := range records {
		it, err := rec.Item.toItem()
		if err != nil {
			return Snapshot{}, err
		}
		reviews := make([]Review, 0, len(rec.Reviews))
		for _, rv := range rec.Reviews {
			reviews = append(reviews, NewReview(ConvertRating(rv.Rating), rv.Comment))
		}
		out.Entries = append(out.Entries, Entry{Item: it, Reviews: reviews})
	}
	return out, nil
}

func (r itemRecord) toItem() (Item, error) {
	kind, ok := kindFromTag(r.Kind)
	if !ok {
		return Item{}, fmt.Errorf("item %d: unknown kind %q", r.ID, r.Kind)
	}

	rating := ConvertRating(r.Rating)
	switch kind {
	case KindFood:
		bb, err := time.Parse(dateLayout, r.BestBefore)
		if err != nil {
			return Item{}, fmt.Errorf("item %d: best before: %w", r.ID, err)
		}
		return NewFood(r.ID, r.Name, r.Price, rating, bb), nil
	default:
		return NewDrink(r.ID, r.Name, r.Price, rating), nil
	}
}

func checksum(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// FileSink keeps one file per dump in Dir. Load consumes the newest file.
type FileSink struct {
	Dir string
	Now func() time.Time
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir, Now: time.Now}
}

func (s *FileSink) Save(ctx context.Context, blob []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}

	name := fmt.Sprintf("%s-%s%s", s.Now().UTC().Format("20060102T150405.000000000"), uuid.NewString(), snapshotSuffix)
	return os.WriteFile(filepath.Join(s.Dir, name), blob, 0o644)
}

func (s *FileSink) Load(ctx context.Context) ([]byte, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.Dir, ErrNoSnapshot)
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), snapshotSuffix) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", s.Dir, ErrNoSnapshot)
	}
	sort.Strings(names)

	path := filepath.Join(s.Dir, names[len(names)-1])
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		return nil, err
	}
	return blob, nil
}
