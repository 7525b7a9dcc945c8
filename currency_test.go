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
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateTableDefaults(t *testing.T) {
	table, err := NewRateTable(nil)
	require.NoError(t, err)

	rate, ok := table.Rate("EUR")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("1.08").Equal(rate))

	rate, ok = table.Rate("usd")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(1).Equal(rate))

	_, ok = table.Rate("XYZ")
	assert.False(t, ok)
}

func TestNewRateTableOverrides(t *testing.T) {
	table, err := NewRateTable(map[string]string{"eur": "2", "MXN": "0.05"})
	require.NoError(t, err)

	rate, ok := table.Rate("EUR")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(2).Equal(rate))

	rate, ok = table.Rate("MXN")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("0.05").Equal(rate))
}

func TestNewRateTableBadOverride(t *testing.T) {
	_, err := NewRateTable(map[string]string{"EUR": "not-a-rate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EUR")
}

func TestConvertToUSD(t *testing.T) {
	table, err := NewRateTable(nil)
	require.NoError(t, err)

	got, ok := table.ConvertToUSD(decimal.NewFromInt(100), "EUR", true)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(108).Equal(got))

	// Missing currency follows the configured policy.
	got, ok = table.ConvertToUSD(decimal.NewFromInt(10), "", true)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(10).Equal(got))

	_, ok = table.ConvertToUSD(decimal.NewFromInt(10), "", false)
	assert.False(t, ok)

	// Unknown codes are always excluded, whatever the policy.
	_, ok = table.ConvertToUSD(decimal.NewFromInt(10), "XYZ", true)
	assert.False(t, ok)
}
