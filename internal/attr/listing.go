package attr

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// maxFractionDigits is enough to show any float64 without rounding.
const maxFractionDigits = 15

// Format renders a property value as tooltip text. Numbers use the grouping
// and decimal separators of lang and are rounded to three fraction digits.
func Format(v any, lang language.Tag) string {
	return format(v, lang)
}

// FormatExact is Format without rounding fractions.
func FormatExact(v any, lang language.Tag) string {
	return format(v, lang, number.MaxFractionDigits(maxFractionDigits))
}

// Raw renders a property value without localization or rounding, suitable
// for storage and comparison.
func Raw(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func format(v any, lang language.Tag, opts ...number.Option) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		p := message.NewPrinter(lang)
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return p.Sprint(number.Decimal(int64(x)))
		}
		return p.Sprint(number.Decimal(x, opts...))
	case int:
		return message.NewPrinter(lang).Sprint(number.Decimal(x))
	case int64:
		return message.NewPrinter(lang).Sprint(number.Decimal(x))
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// Distinct returns one display text per distinct non-nil value, sorted with
// the collation rules of lang, digit runs compared numerically. Values are
// compared by type and raw value, so two values rendering alike both appear.
func Distinct(values []any, lang language.Tag) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		key := fmt.Sprintf("%T:%s", v, Raw(v))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, FormatExact(v, lang))
	}
	collate.New(lang, collate.Numeric).SortStrings(out)
	return out
}

// SplitColumns splits items into n consecutive columns of ceil(len/n)
// entries; the last columns absorb the shortfall and may be empty.
func SplitColumns(items []string, n int) [][]string {
	if n <= 0 {
		n = 1
	}
	size := (len(items) + n - 1) / n
	cols := make([][]string, n)
	for i := range n {
		lo := min(i*size, len(items))
		hi := min(lo+size, len(items))
		if i == n-1 {
			hi = len(items)
		}
		cols[i] = items[lo:hi]
	}
	return cols
}
