// Package format renders amounts, dates and months for the two supported
// display languages.
package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"arthasync/internal/core"
)

// SupportedCurrencies are the currencies offered in settings.
var SupportedCurrencies = []string{"BDT", "USD", "INR"}

var symbols = map[string]string{
	"BDT": "৳",
	"USD": "$",
	"INR": "₹",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

var bengaliMonths = [12]string{
	"জানুয়ারী", "ফেব্রুয়ারী", "মার্চ", "এপ্রিল", "মে", "জুন",
	"জুলাই", "আগস্ট", "সেপ্টেম্বর", "অক্টোবর", "নভেম্বর", "ডিসেম্বর",
}

var bengaliDigits = strings.NewReplacer(
	"0", "০", "1", "১", "2", "২", "3", "৩", "4", "৪",
	"5", "৫", "6", "৬", "7", "৭", "8", "৮", "9", "৯",
)

// Tag maps a display language to its BCP 47 tag.
func Tag(lang core.Language) language.Tag {
	if lang == core.LangBengali {
		return language.Bengali
	}
	return language.English
}

// ValidateCurrency accepts any ISO 4217 code known to x/text.
func ValidateCurrency(code string) error {
	if _, err := currency.ParseISO(strings.TrimSpace(code)); err != nil {
		return fmt.Errorf("%w %q", core.ErrInvalidCurrency, code)
	}
	return nil
}

// Symbol returns the display symbol for code, or the code itself.
func Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if s, ok := symbols[code]; ok {
		return s
	}
	return code
}

// Number renders v with locale grouping and at most two fraction digits.
func Number(v float64, lang core.Language) string {
	p := message.NewPrinter(Tag(lang))
	s := p.Sprint(number.Decimal(v, number.MinFractionDigits(0), number.MaxFractionDigits(2)))
	if lang == core.LangBengali {
		s = bengaliDigits.Replace(s)
	}
	return s
}

// Currency formats an amount with symbol and grouping, e.g. "$1,200" in
// English or "১,২০০৳" in Bengali. Fraction digits appear only when non-zero.
func Currency(amount core.Money, code string, lang core.Language) string {
	sign := ""
	if amount.Cents < 0 {
		sign = "-"
		amount = core.Cents(-amount.Cents)
	}
	num := Number(amount.Float64(), lang)
	sym, known := symbols[strings.ToUpper(strings.TrimSpace(code))]
	if !known {
		sym = Symbol(code)
	}
	if lang == core.LangBengali {
		return sign + num + sym
	}
	if !known {
		// Bare ISO codes read better with a gap.
		return sign + sym + " " + num
	}
	return sign + sym + num
}

// Date renders a short date, e.g. "May 15, 2024".
func Date(d core.Date, lang core.Language) string {
	if d.IsZero() {
		return ""
	}
	if lang == core.LangBengali {
		return bengaliDigits.Replace(fmt.Sprintf("%d %s, %d", d.Day(), bengaliMonths[d.Time.Month()-1], d.Year()))
	}
	return d.Format("Jan 2, 2006")
}

// CurrentMonth returns the month key of now as read on the local clock.
func CurrentMonth(now time.Time) core.Month {
	return core.MonthOf(now.Local())
}

// MonthName renders a month key, e.g. "May 2024". Invalid keys are returned as-is.
func MonthName(m core.Month, lang core.Language) string {
	t, err := m.Time()
	if err != nil {
		return string(m)
	}
	if lang == core.LangBengali {
		return bengaliDigits.Replace(fmt.Sprintf("%s %d", bengaliMonths[t.Month()-1], t.Year()))
	}
	return t.Format("January 2006")
}
