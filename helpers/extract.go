package helpers

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	numberRunRegex = regexp.MustCompile(`\d[\d.,']*`)
	ratingRegex    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	percentRegex   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
)

// ExtractPrice turns price text such as "₹1,234.56", "$ 2,499" or "1.234,56 €" into a number.
// Anything that does not parse yields 0.
func ExtractPrice(text string) float64 {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	run := numberRunRegex.FindString(compact)
	if run == "" {
		return 0
	}
	run = strings.TrimRight(strings.ReplaceAll(run, "'", ""), ".,")

	d, err := decimal.NewFromString(normalizeSeparators(run))
	if err != nil || d.IsNegative() {
		return 0
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// normalizeSeparators rewrites a digit run so that "." is the only (optional) decimal separator.
func normalizeSeparators(run string) string {
	lastDot := strings.LastIndex(run, ".")
	lastComma := strings.LastIndex(run, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// whichever comes last is the decimal separator
		if lastComma > lastDot {
			run = strings.ReplaceAll(run, ".", "")
			return strings.Replace(run, ",", ".", 1)
		}
		return strings.ReplaceAll(run, ",", "")
	case lastComma >= 0:
		// "499,00" is a decimal comma, "1,234" and "1,23,456" are grouping
		if strings.Count(run, ",") == 1 && len(run)-lastComma-1 <= 2 {
			return strings.Replace(run, ",", ".", 1)
		}
		return strings.ReplaceAll(run, ",", "")
	case strings.Count(run, ".") > 1:
		return strings.ReplaceAll(run, ".", "")
	}
	return run
}

// ExtractRating finds the first decimal number in text and clamps it to [0,5]
func ExtractRating(text string) float64 {
	match := ratingRegex.FindString(text)
	if match == "" {
		return 0
	}
	rating, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return ClampRating(rating)
}

// ClampRating clamps a rating to [0,5]
func ClampRating(rating float64) float64 {
	switch {
	case rating < 0:
		return 0
	case rating > 5:
		return 5
	}
	return rating
}

// ExtractPercent returns the first "N%" value in text
func ExtractPercent(text string) (float64, bool) {
	m := percentRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CalculateDiscount returns the whole-number percentage saved going from original to current.
func CalculateDiscount(original, current float64) float64 {
	if original <= 0 || current <= 0 || original <= current {
		return 0
	}
	return RoundTo(100*(original-current)/original, 0)
}

// OriginalFromDiscount inverts the discount formula for pages that only show "N% off"
func OriginalFromDiscount(price, discount float64) float64 {
	if discount <= 0 || discount >= 100 {
		return 0
	}
	return RoundTo(price/(1-discount/100), 0)
}

// RoundTo rounds half away from zero to the given number of decimal places
func RoundTo(value float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return f
}
