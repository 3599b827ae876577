package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is rendered for any value that is missing or undefined.
const Placeholder = "-"

// NotAvailable is rendered for a missing sentiment score.
const NotAvailable = "N/A"

// narrowSymbols maps ISO 4217 codes to the symbol printed before amounts.
var narrowSymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Formatter renders money and percentages for one locale and currency.
// Digit grouping and separators follow the locale; the currency symbol is
// always printed before the amount, whatever the locale's own placement
// ("€1.234,50" for de-DE). Build it once at startup and pass it to whatever
// renders values.
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	symbol  string
	printer *message.Printer
}

// NewFormatter parses a BCP 47 locale (e.g. "en-IN") and an ISO 4217
// currency code (e.g. "INR").
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parsing currency %q: %w", code, err)
	}
	symbol, ok := narrowSymbols[unit.String()]
	if !ok {
		symbol = unit.String() + " "
	}
	return &Formatter{
		tag:     tag,
		unit:    unit,
		symbol:  symbol,
		printer: message.NewPrinter(tag),
	}, nil
}

// MustFormatter is NewFormatter for known-good arguments.
func MustFormatter(locale, code string) *Formatter {
	f, err := NewFormatter(locale, code)
	if err != nil {
		panic(err)
	}
	return f
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() language.Tag { return f.tag }

// CurrencyCode returns the ISO 4217 code amounts are shown in.
func (f *Formatter) CurrencyCode() string { return f.unit.String() }

// Symbol returns the prefix printed before amounts.
func (f *Formatter) Symbol() string { return f.symbol }

// Currency formats v with locale digit grouping and exactly two decimals,
// prefixed by the currency symbol: 105.5 -> "₹105.50". Non-finite input
// renders as zero.
func (f *Formatter) Currency(v float64) string {
	if !finite(v) {
		v = 0
	}
	rounded := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	amount := f.printer.Sprintf("%v", number.Decimal(rounded.InexactFloat64(),
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	return sign + f.symbol + amount
}

// CurrencyPtr is Currency for a nullable value.
func (f *Formatter) CurrencyPtr(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return f.Currency(*v)
}

// Percent formats v to two decimals with a trailing percent sign.
// Non-finite input renders as "0.00%".
func Percent(v float64) string {
	if !finite(v) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// PercentOpt is Percent for a value that may be undefined.
func PercentOpt(v float64, ok bool) string {
	if !ok {
		return Placeholder
	}
	return Percent(v)
}

// Score formats a sentiment score to two decimals, or "N/A" when absent.
func Score(v *float64) string {
	if v == nil || !finite(*v) {
		return NotAvailable
	}
	return decimal.NewFromFloat(*v).StringFixed(2)
}

// Tone classifies a return for styling.
type Tone int

const (
	Positive Tone = iota
	Negative
)

// String returns the tone's CSS-friendly name.
func (t Tone) String() string {
	if t == Negative {
		return "negative"
	}
	return "positive"
}

// ReturnTone is Positive for zero and above, Negative below zero.
func ReturnTone(v float64) Tone {
	if v < 0 {
		return Negative
	}
	return Positive
}

// BreakdownLine is one labelled factor of a calculation breakdown.
type BreakdownLine struct {
	Label string
	Value string
}

// BreakdownLines renders a calculation breakdown sorted by key. Numbers are
// percentage points; strings pass through unchanged.
func BreakdownLines(breakdown map[string]any) []BreakdownLine {
	if len(breakdown) == 0 {
		return nil
	}
	keys := make([]string, 0, len(breakdown))
	for k := range breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]BreakdownLine, 0, len(keys))
	for _, k := range keys {
		var val string
		switch v := breakdown[k].(type) {
		case float64:
			val = Percent(v)
		case string:
			val = v
		case nil:
			val = Placeholder
		default:
			val = fmt.Sprint(v)
		}
		lines = append(lines, BreakdownLine{Label: humanizeKey(k), Value: val})
	}
	return lines
}

var acronyms = map[string]string{"gmp": "GMP", "roce": "ROCE", "roe": "ROE"}

// humanizeKey turns "gmp_contribution" into "GMP contribution".
func humanizeKey(k string) string {
	words := strings.Fields(strings.ReplaceAll(k, "_", " "))
	for i, w := range words {
		if a, ok := acronyms[strings.ToLower(w)]; ok {
			words[i] = a
		}
	}
	if len(words) == 0 {
		return k
	}
	if first := words[0]; first == strings.ToLower(first) {
		words[0] = strings.ToUpper(first[:1]) + first[1:]
	}
	return strings.Join(words, " ")
}

