package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"RateShop/internal/catalog"
	"RateShop/pkg/kit"
)

const (
	service = "catalog"

	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usage = `usage: catalog [-locale tag] [-client name] <command> [args]

commands:
  list [min-price]                              items sorted by rating, then price
  find <id>
  report <id>
  discounts
  locales
  review <id> <stars> <comment...>
  create-drink <id> <name> <price> [stars]
  create-food <id> <name> <price> <yyyy-mm-dd> [stars]
  ingest <item-record>
  ingest-review <id> <review-record>
  dump
  restore
`

func main() {
	var cfg catalog.Config
	if err := kit.LoadConfig(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	code := run(context.Background(), cfg, log, os.Args[1:], os.Stdout)
	_ = log.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg catalog.Config, log *zap.Logger, args []string, out io.Writer) int {
	fs := flag.NewFlagSet(service, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	locale := fs.String("locale", cfg.DefaultLocale, "language tag for formatting")
	client := fs.String("client", "console", "client name used in report file names")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	reg := prometheus.NewRegistry()
	deps := catalog.Deps{Log: log, Registry: reg}

	if cfg.SnapshotDSN != "" {
		pool, err := catalog.OpenPostgres(ctx, cfg.SnapshotDSN)
		if err != nil {
			log.Error("snapshot database unavailable", zap.Error(err))
			return exitFail
		}
		defer pool.Close()
		deps.Sink = catalog.NewPostgresSink(pool)
	}

	c, err := catalog.New(cfg, deps)
	if err != nil {
		log.Error("catalog init failed", zap.Error(err))
		return exitFail
	}

	c.Load(ctx)
	if cfg.RestoreOnStart {
		_ = c.Restore(ctx)
	}

	code := dispatch(ctx, c, fs.Args(), *locale, *client, out)

	if cfg.DumpOnExit {
		_ = c.Dump(ctx)
	}
	if cfg.MetricsFile != "" {
		if err := kit.WriteMetrics(cfg.MetricsFile, reg); err != nil {
			log.Warn("error writing metrics", zap.String("file", cfg.MetricsFile), zap.Error(err))
		}
	}
	return code
}

func dispatch(ctx context.Context, c *catalog.Catalog, args []string, locale, client string, out io.Writer) int {
	cmd, args := args[0], args[1:]
	f := c.Formatters.Get(locale)

	switch cmd {
	case "list":
		minPrice := decimal.Zero
		if len(args) > 0 {
			d, err := decimal.NewFromString(args[0])
			if err != nil {
				return usageErr(out, "bad min-price %q", args[0])
			}
			minPrice = d
		}
		filter := func(it catalog.Item) bool { return it.Price().GreaterThanOrEqual(minPrice) }
		fmt.Fprint(out, c.List(ctx, filter, byRatingThenPrice, locale))
		return exitOK

	case "find":
		id, ok := intArg(args, 0)
		if !ok {
			return usageErr(out, "find needs an id")
		}
		it, err := c.Find(ctx, id)
		if err != nil {
			return failed(out, err)
		}
		fmt.Fprintln(out, c.Reports.Line(it, f))
		return exitOK

	case "report":
		id, ok := intArg(args, 0)
		if !ok {
			return usageErr(out, "report needs an id")
		}
		text, err := c.Report(ctx, id, locale, client)
		fmt.Fprint(out, text)
		if err != nil {
			return failed(out, err)
		}
		return exitOK

	case "discounts":
		totals := c.Discounts(ctx, locale)
		keys := make([]string, 0, len(totals))
		for k := range totals {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s\t%s\n", k, totals[k])
		}
		return exitOK

	case "locales":
		fmt.Fprintln(out, strings.Join(c.Formatters.Supported(), "\n"))
		return exitOK

	case "review":
		id, ok := intArg(args, 0)
		stars, ok2 := intArg(args, 1)
		if !ok || !ok2 || len(args) < 3 {
			return usageErr(out, "review needs <id> <stars> <comment>")
		}
		it, err := c.Review(ctx, id, catalog.ConvertRating(stars), strings.Join(args[2:], " "))
		if err != nil {
			return failed(out, err)
		}
		fmt.Fprintln(out, c.Reports.Line(it, f))
		return exitOK

	case "create-drink", "create-food":
		return create(ctx, c, cmd, args, f, out)

	case "ingest":
		if len(args) == 0 {
			return usageErr(out, "ingest needs a record")
		}
		it, err := c.Ingest(ctx, strings.Join(args, " "))
		if err != nil {
			return failed(out, err)
		}
		fmt.Fprintln(out, c.Reports.Line(it, f))
		return exitOK

	case "ingest-review":
		id, ok := intArg(args, 0)
		if !ok || len(args) < 2 {
			return usageErr(out, "ingest-review needs <id> <record>")
		}
		it, err := c.IngestReview(ctx, id, strings.Join(args[1:], " "))
		if err != nil {
			return failed(out, err)
		}
		fmt.Fprintln(out, c.Reports.Line(it, f))
		return exitOK

	case "dump":
		if err := c.Dump(ctx); err != nil {
			return failed(out, err)
		}
		return exitOK

	case "restore":
		if err := c.Restore(ctx); err != nil {
			return failed(out, err)
		}
		fmt.Fprint(out, c.List(ctx, nil, nil, locale))
		return exitOK
	}

	return usageErr(out, "unknown command %q", cmd)
}

func create(ctx context.Context, c *catalog.Catalog, cmd string, args []string, f catalog.Formatter, out io.Writer) int {
	need := 3
	if cmd == "create-food" {
		need = 4
	}
	if len(args) < need {
		return usageErr(out, "%s needs %d arguments", cmd, need)
	}

	id, ok := intArg(args, 0)
	if !ok {
		return usageErr(out, "bad id %q", args[0])
	}
	price, err := decimal.NewFromString(args[2])
	if err != nil {
		return usageErr(out, "bad price %q", args[2])
	}
	rating := catalog.DefaultRating
	if stars, ok := intArg(args, need); ok {
		rating = catalog.ConvertRating(stars)
	}

	var it catalog.Item
	if cmd == "create-food" {
		bb, err := time.Parse("2006-01-02", args[3])
		if err != nil {
			return usageErr(out, "bad best-before %q", args[3])
		}
		it = c.CreateFood(ctx, id, args[1], price, rating, bb)
	} else {
		it = c.CreateDrink(ctx, id, args[1], price, rating)
	}
	fmt.Fprintln(out, c.Reports.Line(it, f))
	return exitOK
}

func byRatingThenPrice(a, b catalog.Item) bool {
	if a.Rating() != b.Rating() {
		return a.Rating() > b.Rating()
	}
	return a.Price().GreaterThan(b.Price())
}

func intArg(args []string, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	n, err := strconv.Atoi(args[i])
	return n, err == nil
}

func usageErr(out io.Writer, format string, a ...any) int {
	fmt.Fprintf(out, format+"\n", a...)
	fmt.Fprint(out, usage)
	return exitUsage
}

func failed(out io.Writer, err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		fmt.Fprintln(out, "not found")
	default:
		fmt.Fprintln(out, "error:", err)
	}
	return exitFail
}
