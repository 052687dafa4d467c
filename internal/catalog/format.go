package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	msgcat "golang.org/x/text/message/catalog"
	"golang.org/x/text/number"
)

const (
	TextItem      = "product"
	TextReview    = "review"
	TextNoReviews = "no.reviews"

	DefaultLocale = "en-GB"
)

// Formatter renders money, dates and keyed texts for one locale.
type Formatter interface {
	Tag() string
	Money(amount decimal.Decimal) string
	Date(t time.Time) string
	Text(key string, args ...any) string
}

type localeProfile struct {
	tag string
	// spaced puts a space between the currency symbol and the amount.
	spaced     bool
	dateLayout string
	texts      map[string]string
}

var profiles = []localeProfile{
	{
		tag:        "en-GB",
		dateLayout: "02/01/2006",
		texts: map[string]string{
			TextItem:      "%s, Price: %s, Rating: %s, Best Before: %s",
			TextReview:    "Review: %s\t%s",
			TextNoReviews: "Not reviewed",
		},
	},
	{
		tag:        "en-US",
		dateLayout: "1/2/06",
		texts: map[string]string{
			TextItem:      "%s, Price: %s, Rating: %s, Best Before: %s",
			TextReview:    "Review: %s\t%s",
			TextNoReviews: "Not reviewed",
		},
	},
	{
		tag:        "pt-BR",
		spaced:     true,
		dateLayout: "02/01/2006",
		texts: map[string]string{
			TextItem:      "%s, Preço: %s, Avaliação: %s, Consumir até: %s",
			TextReview:    "Avaliação: %s\t%s",
			TextNoReviews: "Sem avaliações",
		},
	},
}

// maxGrouped is the largest whole amount that is grouped by the printer.
var maxGrouped = decimal.NewFromInt(math.MaxInt64)

type textFormatter struct {
	tag        string
	symbol     string
	decimalSep string
	dateLayout string
	printer    *message.Printer
}

func newTextFormatter(p localeProfile, tag language.Tag, printer *message.Printer) (*textFormatter, error) {
	unit, conf := currency.FromTag(tag)
	if conf == language.No {
		return nil, fmt.Errorf("locale %s: no currency", p.tag)
	}

	symbol := printer.Sprint(currency.Symbol(unit))
	if p.spaced {
		symbol += " "
	}
	return &textFormatter{
		tag:        p.tag,
		symbol:     symbol,
		decimalSep: strings.Trim(printer.Sprint(number.Decimal(1.5, number.Scale(1))), "15"),
		dateLayout: p.dateLayout,
		printer:    printer,
	}, nil
}

func (f *textFormatter) Tag() string { return f.tag }

// Money rounds half away from zero to cents. The whole part is grouped by the
// locale printer and the cents are appended exactly, so no precision is lost
// to floating point.
func (f *textFormatter) Money(amount decimal.Decimal) string {
	amount = amount.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	abs := amount.Abs()
	if abs.GreaterThan(maxGrouped) {
		return sign + f.symbol + abs.StringFixed(2)
	}

	whole := abs.IntPart()
	cents := abs.Sub(decimal.NewFromInt(whole)).Shift(2).IntPart()
	return fmt.Sprintf("%s%s%s%s%02d", sign, f.symbol, f.printer.Sprint(number.Decimal(whole)), f.decimalSep, cents)
}

func (f *textFormatter) Date(t time.Time) string { return t.Format(f.dateLayout) }

func (f *textFormatter) Text(key string, args ...any) string {
	return f.printer.Sprintf(key, args...)
}

// Formatters is the fixed set of supported locales with a fallback.
type Formatters struct {
	byTag map[string]Formatter
	def   Formatter
}

func NewFormatters(defaultTag string) (*Formatters, error) {
	b := msgcat.NewBuilder()
	tags := make([]language.Tag, len(profiles))

	for i, p := range profiles {
		tag, err := language.Parse(p.tag)
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", p.tag, err)
		}
		for key, msg := range p.texts {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("locale %s key %s: %w", p.tag, key, err)
			}
		}
		tags[i] = tag
	}

	fs := &Formatters{byTag: make(map[string]Formatter, len(profiles))}
	for i, p := range profiles {
		f, err := newTextFormatter(p, tags[i], message.NewPrinter(tags[i], message.Catalog(b)))
		if err != nil {
			return nil, err
		}
		fs.byTag[p.tag] = f
	}

	if defaultTag == "" {
		defaultTag = DefaultLocale
	}
	def, ok := fs.byTag[defaultTag]
	if !ok {
		return nil, fmt.Errorf("unsupported default locale %q", defaultTag)
	}
	fs.def = def
	return fs, nil
}

// Get returns the formatter for tag, or the default one for unknown tags.
func (fs *Formatters) Get(tag string) Formatter {
	if f, ok := fs.byTag[tag]; ok {
		return f
	}
	return fs.def
}

func (fs *Formatters) Supported() []string {
	out := make([]string, 0, len(fs.byTag))
	for tag := range fs.byTag {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func formatItem(f Formatter, it Item, now time.Time) string {
	return f.Text(TextItem, it.Name(), f.Money(it.Price()), it.Rating().Stars(), f.Date(it.BestBefore(now)))
}

func formatReview(f Formatter, rv Review) string {
	return f.Text(TextReview, rv.Rating().Stars(), rv.Comment())
}
