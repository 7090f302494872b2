package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

var (
	defaultDateFrom = time.Unix(0, 0).UTC()
	defaultDateTo   = time.Date(2500, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// strftime maps the C-style directives accepted in date_format onto Go
// layout fragments.
var strftime = strings.NewReplacer(
	"%Y", "2006",
	"%y", "06",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%I", "03",
	"%M", "04",
	"%S", "05",
	"%p", "PM",
	"%b", "Jan",
	"%B", "January",
	"%a", "Mon",
	"%A", "Monday",
	"%j", "002",
	"%z", "-0700",
	"%Z", "MST",
	"%%", "%",
)

// DateTime draws a whole second in [from, to] and formats it.
type DateTime struct {
	rng    *rand.Rand
	layout string
	from   int64
	span   int64
}

// NewDateTime reads layout (or date_format), from, and to from the node's
// generator config. Times are interpreted in UTC.
func NewDateTime(node *schema.Node, env Env) (Generator, error) {
	layout, err := dateLayout(node)
	if err != nil {
		return nil, err
	}

	from, err := dateOption(node, "from", layout, defaultDateFrom)
	if err != nil {
		return nil, err
	}
	to, err := dateOption(node, "to", layout, defaultDateTo)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, rangeErr("date-time", "from %s is after to %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	return &DateTime{
		rng:    env.Rand,
		layout: layout,
		from:   from.Unix(),
		span:   to.Unix() - from.Unix(),
	}, nil
}

// Generate implements Generator.
func (g *DateTime) Generate() (any, error) {
	seconds := g.from + g.rng.Int64N(g.span+1)
	return time.Unix(seconds, 0).UTC().Format(g.layout), nil
}

func dateLayout(node *schema.Node) (string, error) {
	for _, key := range []string{"layout", "date_format"} {
		value, ok, err := optionString(node, key)
		if err != nil {
			return "", rangeErr("date-time", "%v", err)
		}
		if ok && value != "" {
			if strings.Contains(value, "%") {
				return strftime.Replace(value), nil
			}
			return value, nil
		}
	}
	return time.RFC3339, nil
}

func dateOption(node *schema.Node, key, layout string, fallback time.Time) (time.Time, error) {
	value, ok, err := optionString(node, key)
	if err != nil {
		return time.Time{}, rangeErr("date-time", "%v", err)
	}
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("generator: date-time %s %q does not match layout %q: %w", key, value, layout, err)
	}
	return parsed, nil
}
