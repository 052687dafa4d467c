package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"RateShop/pkg/kit"
)

const service = "catalog"

type Deps struct {
	Log      *zap.Logger
	Registry prometheus.Registerer

	// Sink defaults to a FileSink in Config.TempDir.
	Sink SnapshotSink
	Now  func() time.Time
}

// Catalog is the process-wide entry point to the store. It is built once by
// the caller and shared by reference.
type Catalog struct {
	Store      Store
	Parser     *Parser
	Formatters *Formatters
	Reports    *Reporter
	Loader     *Loader
	Sink       SnapshotSink
	Log        *zap.Logger
	Metrics    *kit.Metrics

	dataDir string
	now     func() time.Time
}

func New(cfg Config, deps Deps) (*Catalog, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	parser, err := NewParser(cfg.ItemPattern, cfg.ReviewPattern)
	if err != nil {
		return nil, err
	}
	formatters, err := NewFormatters(cfg.DefaultLocale)
	if err != nil {
		return nil, err
	}

	sink := deps.Sink
	if sink == nil {
		sink = &FileSink{Dir: cfg.TempDir, Now: now}
	}

	store := NewMemStore()
	c := &Catalog{
		Store:      store,
		Parser:     parser,
		Formatters: formatters,
		Reports: &Reporter{
			Store:        store,
			Formatters:   formatters,
			Log:          log,
			Dir:          cfg.ReportsDir,
			FileTemplate: cfg.ReportFileTemplate,
			Now:          now,
		},
		Loader: &Loader{
			Parser:             parser,
			Store:              store,
			Log:                log,
			ItemFilePrefix:     cfg.ItemFilePrefix,
			ReviewFileTemplate: cfg.ReviewFileTemplate,
			MaxRecordSize:      cfg.MaxRecordSize,
		},
		Sink:    sink,
		Log:     log,
		dataDir: cfg.DataDir,
		now:     now,
	}

	if deps.Registry != nil {
		c.Metrics = kit.NewMetrics(deps.Registry, service)
		deps.Registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "catalog_items",
				Help: "Items currently held by the catalog",
			},
			func() float64 { return float64(store.Len(context.Background())) },
		))
	}
	return c, nil
}

// Load bulk-loads the configured data directory. Failures are logged and
// leave the store as it was.
func (c *Catalog) Load(ctx context.Context) int {
	done := c.Metrics.Track("load")

	n, err := c.Loader.LoadDir(ctx, c.dataDir)
	if err != nil {
		c.Log.Error("error loading data", zap.String("dir", c.dataDir), zap.Error(err))
		done(kit.OutcomeError)
		return 0
	}
	c.Log.Info("data loaded", zap.String("dir", c.dataDir), zap.Int("items", n))
	done(kit.OutcomeOK)
	return n
}

func (c *Catalog) CreateFood(ctx context.Context, id int, name string, price decimal.Decimal, rating Rating, bestBefore time.Time) Item {
	return c.create(ctx, NewFood(id, name, price, rating, bestBefore))
}

func (c *Catalog) CreateDrink(ctx context.Context, id int, name string, price decimal.Decimal, rating Rating) Item {
	return c.create(ctx, NewDrink(id, name, price, rating))
}

func (c *Catalog) create(ctx context.Context, it Item) Item {
	done := c.Metrics.Track("create")

	stored, inserted := c.Store.Insert(ctx, it, nil)
	if !inserted {
		c.Log.Debug("item already exists", zap.Int("id", it.ID()))
	}
	done(kit.OutcomeOK)
	return stored
}

func (c *Catalog) Review(ctx context.Context, id int, rating Rating, comment string) (Item, error) {
	done := c.Metrics.Track("review")

	it, err := c.Store.Review(ctx, id, rating, comment)
	if err != nil {
		c.Log.Info("review skipped", zap.Int("id", id), zap.Error(err))
		done(outcome(err))
		return Item{}, err
	}
	done(kit.OutcomeOK)
	return it, nil
}

func (c *Catalog) Find(ctx context.Context, id int) (Item, error) {
	done := c.Metrics.Track("find")

	it, err := c.Store.Find(ctx, id)
	if err != nil {
		c.Log.Info("find failed", zap.Int("id", id), zap.Error(err))
		done(outcome(err))
		return Item{}, err
	}
	done(kit.OutcomeOK)
	return it, nil
}

// Report renders the report for id and writes the per-client file.
func (c *Catalog) Report(ctx context.Context, id int, languageTag, client string) (string, error) {
	done := c.Metrics.Track("report")

	text, err := c.Reports.Report(ctx, id, languageTag, client)
	done(outcome(err))
	return text, err
}

// List renders one line per item matching filter, in order.
func (c *Catalog) List(ctx context.Context, filter Filter, order Order, languageTag string) string {
	done := c.Metrics.Track("list")
	defer done(kit.OutcomeOK)

	items := c.Store.Enumerate(ctx, filter, order)
	f := c.Formatters.Get(languageTag)
	now := c.now()

	var sb strings.Builder
	for _, it := range items {
		sb.WriteString(formatItem(f, it, now))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Discounts sums item discounts per rating, keyed by the rating's stars and
// formatted as money in the given locale.
func (c *Catalog) Discounts(ctx context.Context, languageTag string) map[string]string {
	done := c.Metrics.Track("discounts")
	defer done(kit.OutcomeOK)

	f := c.Formatters.Get(languageTag)
	totals := c.Store.DiscountTotals(ctx)

	out := make(map[string]string, len(totals))
	for r, sum := range totals {
		out[r.Stars()] = f.Money(sum)
	}
	return out
}

// Ingest parses one item record and adds it unless the ID is taken.
func (c *Catalog) Ingest(ctx context.Context, line string) (Item, error) {
	done := c.Metrics.Track("ingest")

	it, err := c.Parser.ParseItem(line)
	if err != nil {
		c.Log.Warn("error parsing item", zap.Error(err))
		done(kit.OutcomeSkipped)
		return Item{}, err
	}
	stored, _ := c.Store.Insert(ctx, it, nil)
	done(kit.OutcomeOK)
	return stored, nil
}

// IngestReview parses one review record and applies it to item id.
func (c *Catalog) IngestReview(ctx context.Context, id int, line string) (Item, error) {
	rv, err := c.Parser.ParseReview(line)
	if err != nil {
		c.Log.Warn("error parsing review", zap.Int("id", id), zap.Error(err))
		c.Metrics.Track("ingest_review")(kit.OutcomeSkipped)
		return Item{}, err
	}
	return c.Review(ctx, id, rv.Rating(), rv.Comment())
}

// Dump writes a snapshot of the whole catalog to the sink.
func (c *Catalog) Dump(ctx context.Context) error {
	done := c.Metrics.Track("dump")

	blob, err := EncodeSnapshot(c.Store.Snapshot(ctx))
	if err == nil {
		err = c.Sink.Save(ctx, blob)
	}
	if err != nil {
		c.Log.Error("error dumping data", zap.Error(err))
		done(kit.OutcomeError)
		return fmt.Errorf("dump: %w: %v", ErrPersistence, err)
	}
	done(kit.OutcomeOK)
	return nil
}

// Restore replaces the whole catalog with the latest snapshot. On any
// failure the current contents are kept.
func (c *Catalog) Restore(ctx context.Context) error {
	done := c.Metrics.Track("restore")

	blob, err := c.Sink.Load(ctx)
	if err != nil {
		c.Log.Error("error restoring data", zap.Error(err))
		done(kit.OutcomeError)
		return fmt.Errorf("restore: %w: %w", ErrPersistence, err)
	}
	snap, err := DecodeSnapshot(blob)
	if err != nil {
		c.Log.Error("error restoring data", zap.Error(err))
		done(kit.OutcomeError)
		return fmt.Errorf("restore: %w: %v", ErrPersistence, err)
	}

	c.Store.ReplaceAll(ctx, snap)
	c.Log.Info("data restored", zap.Int("items", len(snap.Entries)))
	done(kit.OutcomeOK)
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return kit.OutcomeOK
	case errors.Is(err, ErrNotFound):
		return kit.OutcomeNotFound
	default:
		return kit.OutcomeError
	}
}
