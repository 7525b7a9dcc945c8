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

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// defaultRates holds the built-in USD-per-unit rate table. Callers merge
// overrides on top at construction time; overrides win on conflict.
var defaultRates = map[string]string{
	"USD": "1",
	"EUR": "1.08",
	"GBP": "1.25",
	"JPY": "0.007",
	"INR": "0.012",
	"CAD": "0.74",
	"AUD": "0.66",
	"ETH": "1800",
}

// RateTable converts (value, currency) pairs to USD. It is built once and
// read-only afterwards.
type RateTable struct {
	rates map[string]decimal.Decimal
}

// NewRateTable builds a rate table from the built-in defaults with the given
// overrides merged on top. Rates are USD per unit of the keyed currency.
// A malformed override is an input fault naming the offending entry.
func NewRateTable(overrides map[string]string) (*RateTable, error) {
	rates := make(map[string]decimal.Decimal, len(defaultRates)+len(overrides))
	for code, rate := range defaultRates {
		rates[code] = decimal.RequireFromString(rate)
	}
	for code, rate := range overrides {
		d, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid rate %q for currency %s", rate, code)
		}
		rates[strings.ToUpper(code)] = d
	}
	return &RateTable{rates: rates}, nil
}

// Rate returns the USD-per-unit rate for a currency code.
func (t *RateTable) Rate(code string) (decimal.Decimal, bool) {
	d, ok := t.rates[strings.ToUpper(code)]
	return d, ok
}

// ConvertToUSD converts value in the given currency to USD. A missing
// currency is treated as USD when assumeMissingUSD is set, otherwise the
// record is excluded (ok=false). An unknown currency code with no rate entry
// is always excluded.
func (t *RateTable) ConvertToUSD(value decimal.Decimal, currency string, assumeMissingUSD bool) (decimal.Decimal, bool) {
	if currency == "" {
		if !assumeMissingUSD {
			return decimal.Zero, false
		}
		currency = "USD"
	}
	rate, ok := t.Rate(currency)
	if !ok {
		return decimal.Zero, false
	}
	return value.Mul(rate), true
}
