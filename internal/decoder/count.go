package decoder

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// magnitude suffixes used by the feed for abbreviated counters
var magnitudes = []struct {
	suffix string
	factor float64
}{
	{"亿", 1e8},
	{"万", 1e4},
	{"w", 1e4},
	{"W", 1e4},
	{"k", 1e3},
	{"K", 1e3},
}

// ParseCount normalises a counter that may arrive as a JSON number or as a
// localised string such as "1.2万" or "10万+". Anything unparsable is zero and
// values past the int64 range saturate at math.MaxInt64.
func ParseCount(r gjson.Result) int64 {
	switch r.Type {
	case gjson.Number:
		if r.Num < 0 || math.IsNaN(r.Num) || math.IsInf(r.Num, 0) {
			return 0
		}
		return toCount(r.Num)
	case gjson.String:
		return ParseCountString(r.Str)
	default:
		return 0
	}
}

// ParseCountString is ParseCount for plain strings.
func ParseCountString(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	factor := 1.0
	for _, m := range magnitudes {
		if strings.HasSuffix(s, m.suffix) {
			factor = m.factor
			s = strings.TrimSpace(strings.TrimSuffix(s, m.suffix))
			break
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return toCount(v * factor)
}

// toCount rounds v and clamps it to the int64 range; the float64 image of
// math.MaxInt64 is 2^63, which already overflows the conversion.
func toCount(v float64) int64 {
	v = math.Round(v)
	if v >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(v)
}
