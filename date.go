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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const isoDate = "2006-01-02"

var (
	ordinalSuffixRe = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)`)
	// Bare numeric date with a two-digit year, slash or dash separated.
	twoDigitYearRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2})$`)
	// Bare numeric date with a four-digit year.
	numericDashRe = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	// A quoted two-digit year, as in "March 3 '99".
	quotedYearRe = regexp.MustCompile(`['’](\d{2})\b`)
	// Month name followed by day and a bare two-digit year, as in "Jan 1 23".
	monthNameShortYearRe = regexp.MustCompile(`(?i)^([A-Za-z]{3,9})\s+(\d{1,2})\s+(\d{2})$`)
)

// fallbackLayouts is the permissive second-stage parse, tried in order after
// the tolerant parser gives up.
var fallbackLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006", // reached only when the month-first read is impossible
	"2/1/2006",
	"2006/01/02",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006.01.02",
	"02.01.2006",
}

// expandTwoDigitYear applies the fixed pivot: years 00-25 map to 2000-2025
// and years 26-99 map to 1900-1999. The pivot is a policy choice, not a
// calendar fact.
func expandTwoDigitYear(yy int) int {
	if yy <= 25 {
		return 2000 + yy
	}
	return 1900 + yy
}

// ParseDate reduces a raw date string to an ISO YYYY-MM-DD string, or ""
// when unparseable. Ambiguous numeric day/month order resolves as
// month-day-year, any time-of-day component is discarded, and absence is the
// only failure signal.
func ParseDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = ordinalSuffixRe.ReplaceAllString(s, "$1")
	s = rewriteTwoDigitYear(s)

	if t, err := dateparse.ParseAny(s); err == nil {
		return t.Format(isoDate)
	}

	cleaned := strings.Join(strings.Fields(strings.ReplaceAll(s, ",", " ")), " ")
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format(isoDate)
		}
	}
	return ""
}

// rewriteTwoDigitYear expands two-digit years before parsing so the pivot
// policy, not the parser's, decides the century. Dash-separated numeric
// dates are normalized to slashes on the way through.
func rewriteTwoDigitYear(s string) string {
	if m := twoDigitYearRe.FindStringSubmatch(s); m != nil {
		yy, _ := strconv.Atoi(m[3])
		return fmt.Sprintf("%s/%s/%d", m[1], m[2], expandTwoDigitYear(yy))
	}
	if m := numericDashRe.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s/%s/%s", m[1], m[2], m[3])
	}
	if m := quotedYearRe.FindStringSubmatch(s); m != nil {
		yy, _ := strconv.Atoi(m[1])
		return quotedYearRe.ReplaceAllString(s, strconv.Itoa(expandTwoDigitYear(yy)))
	}
	if m := monthNameShortYearRe.FindStringSubmatch(s); m != nil {
		yy, _ := strconv.Atoi(m[3])
		return fmt.Sprintf("%s %s %d", m[1], m[2], expandTwoDigitYear(yy))
	}
	return s
}
