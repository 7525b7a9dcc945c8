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
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerlint/ledgerlint/model"
)

// AggregateOptions control grouping, rounding, and the missing-currency
// policy of the aggregation fold.
type AggregateOptions struct {
	GroupBy          string // "category" (default), "merchant", "currency", "date"
	RoundDigits      int32
	AssumeMissingUSD bool
}

// Aggregate folds a fully enriched batch into a spending report: convert to
// USD, group, sort descending, round half-up, recompute the total from the
// rounded buckets, then pick the top bucket with a lexicographic tie-break.
// Records whose amount could not be converted are excluded from totals.
func (t *RateTable) Aggregate(records []model.EnrichedRecord, opts AggregateOptions) *model.Report {
	if opts.GroupBy == "" {
		opts.GroupBy = "category"
	}

	sums := make(map[string]decimal.Decimal)
	var keys []string
	for i := range records {
		rec := &records[i]
		usd, ok := t.recordUSD(rec, opts.AssumeMissingUSD)
		if !ok {
			continue
		}
		key := groupKey(rec, opts.GroupBy)
		if _, seen := sums[key]; !seen {
			keys = append(keys, key)
		}
		sums[key] = sums[key].Add(usd)
	}

	buckets := make([]model.ReportBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, model.ReportBucket{
			Category:  key,
			AmountUSD: sums[key].Round(opts.RoundDigits),
		})
	}
	// Descending by rounded amount; equal amounts order by label so the top
	// pick is reproducible across input orderings.
	sort.SliceStable(buckets, func(i, j int) bool {
		cmp := buckets[i].AmountUSD.Cmp(buckets[j].AmountUSD)
		if cmp != 0 {
			return cmp > 0
		}
		return buckets[i].Category < buckets[j].Category
	})

	// The total is the sum of the rounded bucket amounts, not an
	// independently rounded grand total.
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.AmountUSD)
	}
	for i := range buckets {
		if !total.IsZero() {
			pct, _ := buckets[i].AmountUSD.Div(total).Mul(decimal.NewFromInt(100)).Float64()
			buckets[i].Pct = pct
		}
	}

	report := &model.Report{
		ReportID:    "rep_" + uuid.New().String(),
		ByCategory:  buckets,
		TotalUSD:    total,
		GeneratedAt: time.Now(),
	}
	if len(buckets) > 0 {
		report.TopCategory = buckets[0].Category
		report.Amount = buckets[0].AmountUSD
		report.TopAmount = buckets[0].AmountUSD
	}
	return report
}

// recordUSD returns the record's USD amount, converting on the fly when the
// pipeline has not already done so.
func (t *RateTable) recordUSD(rec *model.EnrichedRecord, assumeMissingUSD bool) (decimal.Decimal, bool) {
	if rec.AmountUSD != nil {
		return *rec.AmountUSD, true
	}
	if !rec.Amount.HasValue() {
		return decimal.Zero, false
	}
	return t.ConvertToUSD(*rec.Amount.Value, rec.Amount.Currency, assumeMissingUSD)
}

func groupKey(rec *model.EnrichedRecord, groupBy string) string {
	switch groupBy {
	case "merchant":
		return rec.Merchant.Canonical
	case "currency":
		return rec.Amount.Currency
	case "date":
		return rec.NormalizedDate
	default:
		return rec.Category
	}
}

// FormatUSD renders a decimal as a fixed-format currency string, e.g.
// "$1,234.56" or "-$8.00".
func FormatUSD(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	f, _ := d.Float64()
	return sign + "$" + humanize.CommafWithDigits(f, 2)
}

// HumanReadable renders the report for terminal output.
func HumanReadable(r *model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Top category: %s (%s)\n", labelOrUncategorized(r.TopCategory), FormatUSD(r.TopAmount))
	fmt.Fprintf(&b, "Total spend: %s\n", FormatUSD(r.TotalUSD))
	for _, bucket := range r.ByCategory {
		fmt.Fprintf(&b, "  %-20s %12s  %5.1f%%\n", labelOrUncategorized(bucket.Category), FormatUSD(bucket.AmountUSD), bucket.Pct)
	}
	return b.String()
}

func labelOrUncategorized(label string) string {
	if label == "" {
		return "(uncategorized)"
	}
	return label
}
