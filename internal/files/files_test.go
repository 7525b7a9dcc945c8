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

package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRows(t *testing.T) {
	path := writeFile(t, "tx.csv", "Date, Merchant ,AMOUNT\n01/02/2023,UBER *TRIP,$10.00\n2023-01-03,STARBUCKS\n")

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Header names are trimmed and lowercased.
	assert.Equal(t, "01/02/2023", rows[0].Field("date"))
	assert.Equal(t, "UBER *TRIP", rows[0].Field("merchant"))
	assert.Equal(t, "$10.00", rows[0].Field("amount"))

	// Ragged rows read missing cells as "".
	assert.Equal(t, "STARBUCKS", rows[1].Field("merchant"))
	assert.Empty(t, rows[1].Field("amount"))
}

func TestReadRowsMissingFile(t *testing.T) {
	_, err := ReadRows("/nonexistent/tx.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/tx.csv")
}

func TestLoadAliasTable(t *testing.T) {
	path := writeFile(t, "merchants.json", `{"Uber": ["UBER *TRIP"], "Target": "TGT"}`)

	table, err := LoadAliasTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Uber", "Target"}, table.Canonicals())
}

func TestLoadAliasTableRejectsEmpty(t *testing.T) {
	path := writeFile(t, "merchants.json", `{}`)
	_, err := LoadAliasTable(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no merchants")
}

func TestLoadRates(t *testing.T) {
	path := writeFile(t, "rates.json", `{"EUR": "1.10", "JPY": 0.0071}`)

	rates, err := LoadRates(path)
	require.NoError(t, err)
	assert.Equal(t, "1.10", rates["EUR"])
	assert.Equal(t, "0.0071", rates["JPY"])
}

func TestLoadRatesRejectsBadValue(t *testing.T) {
	path := writeFile(t, "rates.json", `{"EUR": ["1.10"]}`)
	_, err := LoadRates(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EUR")
}
