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
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlint/ledgerlint/model"
)

func enrichedRec(category, value, currency string) model.EnrichedRecord {
	d := decimal.RequireFromString(value)
	return model.EnrichedRecord{
		Category: category,
		Amount:   model.ParsedAmount{Value: &d, Currency: currency},
	}
}

func mustRateTable(t *testing.T) *RateTable {
	t.Helper()
	table, err := NewRateTable(nil)
	require.NoError(t, err)
	return table
}

func TestAggregate(t *testing.T) {
	rates := mustRateTable(t)
	records := []model.EnrichedRecord{
		enrichedRec("Transport", "10.00", "USD"),
		enrichedRec("Food", "5.00", "EUR"),
		enrichedRec("Shopping", "20.00", "USD"),
	}

	report := rates.Aggregate(records, AggregateOptions{RoundDigits: 2, AssumeMissingUSD: true})

	require.Len(t, report.ByCategory, 3)
	assert.Equal(t, "Shopping", report.TopCategory)
	assert.True(t, decimal.NewFromInt(20).Equal(report.TopAmount))
	assert.True(t, decimal.RequireFromString("35.40").Equal(report.TotalUSD), "got total %s", report.TotalUSD)

	assert.Equal(t, "Shopping", report.ByCategory[0].Category)
	assert.Equal(t, "Transport", report.ByCategory[1].Category)
	assert.Equal(t, "Food", report.ByCategory[2].Category)
	assert.True(t, decimal.RequireFromString("5.40").Equal(report.ByCategory[2].AmountUSD))

	assert.True(t, strings.HasPrefix(report.ReportID, "rep_"))
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestAggregateTieBreak(t *testing.T) {
	rates := mustRateTable(t)
	records := []model.EnrichedRecord{
		enrichedRec("Transport", "10.00", "USD"),
		enrichedRec("Food", "10.00", "USD"),
	}

	// Ties at the maximum resolve to the lexicographically smallest label,
	// whatever the input order.
	report := rates.Aggregate(records, AggregateOptions{RoundDigits: 2, AssumeMissingUSD: true})
	assert.Equal(t, "Food", report.TopCategory)

	reversed := rates.Aggregate([]model.EnrichedRecord{records[1], records[0]},
		AggregateOptions{RoundDigits: 2, AssumeMissingUSD: true})
	assert.Equal(t, "Food", reversed.TopCategory)
}

func TestAggregateTotalFromRoundedBuckets(t *testing.T) {
	rates := mustRateTable(t)
	// 1.005 and 2.005 each round half-up to x.01; the total must be the sum
	// of the rounded buckets, not a rounding of the raw sum.
	records := []model.EnrichedRecord{
		enrichedRec("Food", "1.005", "USD"),
		enrichedRec("Transport", "2.005", "USD"),
	}

	report := rates.Aggregate(records, AggregateOptions{RoundDigits: 2, AssumeMissingUSD: true})
	assert.True(t, decimal.RequireFromString("3.02").Equal(report.TotalUSD), "got total %s", report.TotalUSD)
}

func TestAggregateMissingCurrencyPolicy(t *testing.T) {
	rates := mustRateTable(t)
	records := []model.EnrichedRecord{
		enrichedRec("Food", "10.00", ""),
		enrichedRec("Transport", "5.00", "USD"),
	}

	assumed := rates.Aggregate(records, AggregateOptions{RoundDigits: 2, AssumeMissingUSD: true})
	assert.True(t, decimal.NewFromInt(15).Equal(assumed.TotalUSD))

	excluded := rates.Aggregate(records, AggregateOptions{RoundDigits: 2, AssumeMissingUSD: false})
	assert.True(t, decimal.NewFromInt(5).Equal(excluded.TotalUSD))
	require.Len(t, excluded.ByCategory, 1)
	assert.Equal(t, "Transport", excluded.ByCategory[0].Category)
}

func TestAggregateSkipsUnparsedAndUnknown(t *testing.T) {
	rates := mustRateTable(t)
	records := []model.EnrichedRecord{
		{Category: "Food"}, // no parsed value at all
		enrichedRec("Transport", "5.00", "XYZ"),
		enrichedRec("Shopping", "1.00", "USD"),
	}

	report := rates.Aggregate(records, AggregateOptions{RoundDigits: 2, AssumeMissingUSD: true})
	require.Len(t, report.ByCategory, 1)
	assert.Equal(t, "Shopping", report.ByCategory[0].Category)
}

func TestAggregateZeroTotalPct(t *testing.T) {
	rates := mustRateTable(t)
	records := []model.EnrichedRecord{
		enrichedRec("Food", "0.00", "USD"),
	}

	report := rates.Aggregate(records, AggregateOptions{RoundDigits: 2, AssumeMissingUSD: true})
	require.Len(t, report.ByCategory, 1)
	assert.Zero(t, report.ByCategory[0].Pct)
}

func TestAggregateGroupBy(t *testing.T) {
	rates := mustRateTable(t)
	records := []model.EnrichedRecord{
		{
			Category: "Food",
			Merchant: model.MerchantMatch{Canonical: "Starbucks"},
			Amount:   model.ParsedAmount{Value: decimalPtr("4.00"), Currency: "USD"},
		},
		{
			Category: "Food",
			Merchant: model.MerchantMatch{Canonical: "Chipotle"},
			Amount:   model.ParsedAmount{Value: decimalPtr("9.00"), Currency: "USD"},
		},
	}

	byMerchant := rates.Aggregate(records, AggregateOptions{GroupBy: "merchant", RoundDigits: 2, AssumeMissingUSD: true})
	require.Len(t, byMerchant.ByCategory, 2)
	assert.Equal(t, "Chipotle", byMerchant.TopCategory)

	byCategory := rates.Aggregate(records, AggregateOptions{GroupBy: "category", RoundDigits: 2, AssumeMissingUSD: true})
	require.Len(t, byCategory.ByCategory, 1)
	assert.True(t, decimal.NewFromInt(13).Equal(byCategory.TotalUSD))
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$1,234.56", FormatUSD(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "-$8", FormatUSD(decimal.RequireFromString("-8")))
	assert.Equal(t, "$0", FormatUSD(decimal.Zero))
}

func TestHumanReadable(t *testing.T) {
	rates := mustRateTable(t)
	report := rates.Aggregate([]model.EnrichedRecord{
		enrichedRec("Food", "12.00", "USD"),
	}, AggregateOptions{RoundDigits: 2, AssumeMissingUSD: true})

	out := HumanReadable(report)
	assert.Contains(t, out, "Top category: Food")
	assert.Contains(t, out, "Total spend: $12")
}
