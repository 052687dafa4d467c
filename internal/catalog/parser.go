package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultItemPattern   = `^(?P<kind>[DF]),(?P<id>\d+),(?P<name>[^,]+),(?P<price>[^,]+),(?P<rating>\d+)(?:,(?P<bestBefore>[^,]*))?$`
	DefaultReviewPattern = `^(?P<rating>\d+),(?P<comment>.+)$`
)

var (
	itemGroups   = []string{"kind", "id", "name", "price", "rating"}
	reviewGroups = []string{"rating", "comment"}
)

// Parser turns single text records into items or reviews using two
// named-group patterns.
type Parser struct {
	item   *regexp.Regexp
	review *regexp.Regexp
}

// NewParser compiles the patterns; empty strings select the defaults.
func NewParser(itemPattern, reviewPattern string) (*Parser, error) {
	if itemPattern == "" {
		itemPattern = DefaultItemPattern
	}
	if reviewPattern == "" {
		reviewPattern = DefaultReviewPattern
	}

	item, err := compilePattern(itemPattern, itemGroups)
	if err != nil {
		return nil, fmt.Errorf("item pattern: %w", err)
	}
	review, err := compilePattern(reviewPattern, reviewGroups)
	if err != nil {
		return nil, fmt.Errorf("review pattern: %w", err)
	}
	return &Parser{item: item, review: review}, nil
}

func compilePattern(pattern string, required []string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	for _, g := range required {
		if re.SubexpIndex(g) < 0 {
			return nil, fmt.Errorf("missing group %q", g)
		}
	}
	return re, nil
}

func (p *Parser) ParseReview(line string) (Review, error) {
	f, ok := match(p.review, line)
	if !ok {
		return Review{}, skipped("review", line, nil)
	}

	stars, err := strconv.Atoi(f["rating"])
	if err != nil {
		return Review{}, skipped("review", line, err)
	}
	return NewReview(ConvertRating(stars), f["comment"]), nil
}

func (p *Parser) ParseItem(line string) (Item, error) {
	f, ok := match(p.item, line)
	if !ok {
		return Item{}, skipped("item", line, nil)
	}

	kind, ok := kindFromTag(f["kind"])
	if !ok {
		return Item{}, skipped("item", line, fmt.Errorf("unknown kind %q", f["kind"]))
	}
	id, err := strconv.Atoi(f["id"])
	if err != nil {
		return Item{}, skipped("item", line, err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(f["price"]))
	if err != nil {
		return Item{}, skipped("item", line, err)
	}
	stars, err := strconv.Atoi(f["rating"])
	if err != nil {
		return Item{}, skipped("item", line, err)
	}
	rating := ConvertRating(stars)

	switch kind {
	case KindFood:
		bb, err := time.Parse(dateLayout, strings.TrimSpace(f["bestBefore"]))
		if err != nil {
			return Item{}, skipped("item", line, err)
		}
		return NewFood(id, f["name"], price, rating, bb), nil
	default:
		return NewDrink(id, f["name"], price, rating), nil
	}
}

func match(re *regexp.Regexp, line string) (map[string]string, bool) {
	m := re.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return nil, false
	}

	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			out[name] = m[i]
		}
	}
	return out, true
}

func skipped(what, line string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s %q: %w", what, line, ErrParseSkipped)
	}
	return fmt.Errorf("%s %q: %w: %v", what, line, ErrParseSkipped, cause)
}
