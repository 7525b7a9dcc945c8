/*
Copyright 2025 Ledgerlint Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ledgerlint

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerlint/ledgerlint/model"
)

// currencySymbol maps a symbol to its ISO code. The list is ordered so that
// multi-character symbols are matched before the bare "$".
type currencySymbol struct {
	symbol string
	code   string
}

var currencySymbols = []currencySymbol{
	{"US$", "USD"},
	{"CA$", "CAD"},
	{"C$", "CAD"},
	{"AU$", "AUD"},
	{"A$", "AUD"},
	{"HK$", "HKD"},
	{"$", "USD"},
	{"£", "GBP"},
	{"€", "EUR"},
	{"¥", "JPY"},
	{"₹", "INR"},
}

// currencyWord maps a whole-word currency name to its ISO code, scanned over
// the original string in this fixed priority order.
type currencyWord struct {
	pattern *regexp.Regexp
	code    string
}

var currencyWords = []currencyWord{
	{regexp.MustCompile(`(?i)\bdollars?\b`), "USD"},
	{regexp.MustCompile(`(?i)\beuros?\b`), "EUR"},
	{regexp.MustCompile(`(?i)\bpounds?\b`), "GBP"},
	{regexp.MustCompile(`(?i)\byen\b`), "JPY"},
	{regexp.MustCompile(`(?i)\brupees?\b`), "INR"},
	{regexp.MustCompile(`(?i)\bfrancs?\b`), "CHF"},
	{regexp.MustCompile(`(?i)\bether\b`), "ETH"},
}

// ParseAmount reduces a raw amount string to a decimal value plus a detected
// currency code, recording an issue tag for every repair heuristic that
// fired. It never fails: an irrecoverable input yields an absent value (and
// an absent currency, keeping the two failure paths consistent) together
// with the issues accumulated up to that point.
func ParseAmount(raw string) model.ParsedAmount {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.ParsedAmount{}
	}
	original := s
	var issues []string
	tag := func(issue string) {
		for _, have := range issues {
			if have == issue {
				return
			}
		}
		issues = append(issues, issue)
	}

	s = normalizeSpaces(s, tag)
	s = normalizeUnicodeDigits(s, tag)
	s = normalizeDecimalPunctuation(s, tag)

	s, negative := detectNegativity(s)
	s, code := detectCurrencyToken(s)
	s = stripGrouping(s, tag)
	s = resolveSeparators(s, tag)

	// Strip anything that survived the earlier passes and is not part of a
	// numeric token.
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)

	value, ok := parseNumeric(s, tag)
	if !ok {
		return model.ParsedAmount{Issues: issues}
	}
	if negative {
		value = value.Neg()
	}

	currency := resolveCurrency(code, original)
	return model.ParsedAmount{Value: &value, Currency: currency, Issues: issues}
}

// normalizeSpaces rewrites exotic whitespace code points to ASCII space.
func normalizeSpaces(s string, tag func(string)) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\u00a0', '\u2009', '\u202f', '\u200a': // nbsp, thin, narrow no-break, hair
			tag(model.IssueNormalizedSpace)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeUnicodeDigits converts non-ASCII numeral systems to ASCII digits
// per their Unicode digit value.
func normalizeUnicodeDigits(s string, tag func(string)) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '０' && r <= '９': // fullwidth
			tag(model.IssueUnicodeDigitsConverted)
			b.WriteRune('0' + (r - '０'))
		case r >= '٠' && r <= '٩': // Arabic-Indic
			tag(model.IssueUnicodeDigitsConverted)
			b.WriteRune('0' + (r - '٠'))
		case r >= '۰' && r <= '۹': // Extended Arabic-Indic
			tag(model.IssueUnicodeDigitsConverted)
			b.WriteRune('0' + (r - '۰'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeDecimalPunctuation rewrites non-ASCII decimal and thousands
// punctuation: fullwidth dot and the Arabic decimal separator become ".",
// the Arabic thousands separator is dropped, the fullwidth comma becomes ",".
func normalizeDecimalPunctuation(s string, tag func(string)) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '．', '٫':
			tag(model.IssueNormalizedDecimalSeparators)
			b.WriteRune('.')
		case '٬':
			tag(model.IssueNormalizedDecimalSeparators)
		case '，':
			tag(model.IssueNormalizedDecimalSeparators)
			b.WriteRune(',')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// detectNegativity strips surrounding parentheses or a leading minus glyph
// and reports whether the amount is negative.
func detectNegativity(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return strings.TrimSpace(s[1 : len(s)-1]), true
	}
	for _, minus := range []string{"-", "–", "−"} { // hyphen-minus, en dash, minus sign
		if strings.HasPrefix(s, minus) {
			return strings.TrimSpace(strings.TrimPrefix(s, minus)), true
		}
	}
	return s, false
}

// detectCurrencyToken removes an ISO-style 3-letter code (trailing preferred
// over leading) or the first known currency symbol from the numeric
// remainder, returning the remainder and the resolved code.
func detectCurrencyToken(s string) (string, string) {
	s = strings.TrimSpace(s)

	// Trailing run of letters: a code only when exactly three long.
	runes := []rune(s)
	end := len(runes)
	for end > 0 && isASCIILetter(runes[end-1]) {
		end--
	}
	if trailing := len(runes) - end; trailing == 3 {
		return strings.TrimSpace(string(runes[:end])), strings.ToUpper(string(runes[end:]))
	}

	// Leading run of letters.
	start := 0
	for start < len(runes) && isASCIILetter(runes[start]) {
		start++
	}
	if start == 3 {
		return strings.TrimSpace(string(runes[start:])), strings.ToUpper(string(runes[:start]))
	}

	for _, cs := range currencySymbols {
		if idx := strings.Index(s, cs.symbol); idx >= 0 {
			return strings.TrimSpace(s[:idx] + s[idx+len(cs.symbol):]), cs.code
		}
	}
	return s, ""
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// stripGrouping removes internal spaces and apostrophe-style grouping marks.
func stripGrouping(s string, tag func(string)) string {
	if strings.ContainsAny(s, "'’‘") {
		tag(model.IssueRemovedApostropheGrouping)
		s = strings.Map(func(r rune) rune {
			if r == '\'' || r == '’' || r == '‘' {
				return -1
			}
			return r
		}, s)
	}
	return strings.ReplaceAll(s, " ", "")
}

// resolveSeparators disambiguates comma versus dot as the decimal separator.
// When both are present the one occurring last is the decimal point; a lone
// comma is the decimal point only when its final group is at most two digits.
func resolveSeparators(s string, tag func(string)) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if len(s)-lastComma-1 <= 2 {
			tag(model.IssueCommaAsDecimal)
			head := strings.ReplaceAll(s[:lastComma], ",", "")
			s = head + "." + s[lastComma+1:]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}

// parseNumeric attempts the numeric parse, repairing a multi-dot remainder
// (all but the last dot treated as grouping) when no two dots are adjacent.
func parseNumeric(s string, tag func(string)) (decimal.Decimal, bool) {
	if s == "" || s == "-" {
		return decimal.Zero, false
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d, true
	}
	if strings.Count(s, ".") > 1 && !strings.Contains(s, "..") {
		tag(model.IssueRepairedMultipleDots)
		last := strings.LastIndex(s, ".")
		repaired := strings.ReplaceAll(s[:last], ".", "") + s[last:]
		if d, err := decimal.NewFromString(repaired); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

// resolveCurrency picks the final currency: explicit code or symbol first,
// then a whole-word currency-name match scanned over the original string.
func resolveCurrency(code, original string) string {
	if code != "" {
		return code
	}
	for _, cw := range currencyWords {
		if cw.pattern.MatchString(original) {
			return cw.code
		}
	}
	return ""
}
