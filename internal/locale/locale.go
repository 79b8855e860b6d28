// Package locale formats numbers, money and dates the way every report in
// the school system shows them (en-PH conventions).
package locale

import (
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en_PH"
)

// CurrencyCode prefixes money values. The PDF core fonts have no glyph for
// the peso sign, so the ISO code is used everywhere.
const CurrencyCode = "PHP"

// Formatter formats values for one locale.
type Formatter struct {
	trans locales.Translator
}

// New returns an en-PH formatter.
func New() *Formatter {
	return &Formatter{trans: en_PH.New()}
}

// Default is the formatter shared by the report builders.
var Default = New()

// Number formats f with grouping and exactly decimals fraction digits.
func (f *Formatter) Number(v float64, decimals uint64) string {
	return f.trans.FmtNumber(v, decimals)
}

// Currency formats an amount as "PHP 18,500.00".
func (f *Formatter) Currency(amount float64) string {
	return CurrencyCode + " " + f.trans.FmtNumber(amount, 2)
}

// Date formats t as a long date, e.g. "November 20, 2024".
func (f *Formatter) Date(t time.Time) string {
	return f.trans.FmtDateLong(t)
}

// ShortDate formats t in the short numeric form.
func (f *Formatter) ShortDate(t time.Time) string {
	return f.trans.FmtDateShort(t)
}

// Timestamp formats t as "<long date>, <short time>", used in document
// footers.
func (f *Formatter) Timestamp(t time.Time) string {
	return f.trans.FmtDateLong(t) + ", " + f.trans.FmtTimeShort(t)
}

// Title upper-cases the first letter of an enum tag, "active" -> "Active".
// Underscores become spaces.
func Title(tag string) string {
	tag = strings.ReplaceAll(tag, "_", " ")
	if tag == "" {
		return ""
	}

	return strings.ToUpper(tag[:1]) + tag[1:]
}
