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

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasTableAdd(t *testing.T) {
	table := NewAliasTable()
	table.Add("Uber", "UBER *TRIP")
	table.Add("Target")
	table.Add("Uber", "UBER BV")

	assert.Equal(t, []string{"Uber", "Target"}, table.Canonicals())
	// The canonical name itself is always the first candidate.
	assert.Equal(t, []string{"Uber", "UBER *TRIP", "UBER BV"}, table.Aliases("Uber"))
	assert.Equal(t, []string{"Target"}, table.Aliases("Target"))
	assert.Equal(t, 2, table.Len())
}

func TestAliasTableUnmarshalPreservesOrder(t *testing.T) {
	doc := `{
		"Zebra Cafe": ["ZEBRA C"],
		"Alpha Mart": ["ALPHA M", "ALPHAMART"],
		"Midtown Gym": "MIDTOWN GYM #2"
	}`
	table := NewAliasTable()
	require.NoError(t, json.Unmarshal([]byte(doc), table))

	// Document key order, not lexical order, drives iteration.
	assert.Equal(t, []string{"Zebra Cafe", "Alpha Mart", "Midtown Gym"}, table.Canonicals())
	// A bare string value reads as a one-element alias list.
	assert.Equal(t, []string{"Midtown Gym", "MIDTOWN GYM #2"}, table.Aliases("Midtown Gym"))
}

func TestAliasTableUnmarshalRejectsNonObject(t *testing.T) {
	table := NewAliasTable()
	assert.Error(t, json.Unmarshal([]byte(`["Uber"]`), table))
	assert.Error(t, json.Unmarshal([]byte(`{"Uber": 42}`), table))
}

func TestRawRecordField(t *testing.T) {
	var nilRecord RawRecord
	assert.Empty(t, nilRecord.Field("amount"))

	rec := RawRecord{"amount": "12.50"}
	assert.Equal(t, "12.50", rec.Field("amount"))
	assert.Empty(t, rec.Field("missing"))
}

func TestParsedAmountHasValue(t *testing.T) {
	assert.False(t, ParsedAmount{}.HasValue())
}
