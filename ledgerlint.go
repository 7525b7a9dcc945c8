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

// Package ledgerlint normalizes messy financial transaction exports: raw
// amount strings become decimal values with currency codes, free-form dates
// become ISO dates, merchant descriptors resolve to canonical names, records
// classify into spending categories, and a batch folds into a deterministic
// spending report.
package ledgerlint

import (
	"github.com/pkg/errors"

	"github.com/ledgerlint/ledgerlint/config"
	"github.com/ledgerlint/ledgerlint/model"
)

// Ledgerlint wires the normalizers, the merchant matcher, the category
// classifier, and the rate table into one processing engine. It is safe for
// concurrent use after construction.
type Ledgerlint struct {
	cnf        *config.Configuration
	table      *model.AliasTable
	matcher    *Matcher
	classifier *Classifier
	rates      *RateTable
}

// New builds an engine from a loaded configuration, a merchant alias table,
// and an optional embedding encoder. An empty alias table is an input fault:
// every downstream merchant resolution would degrade to no_merchant_map.
func New(cnf *config.Configuration, table *model.AliasTable, enc Encoder) (*Ledgerlint, error) {
	if cnf == nil {
		return nil, errors.New("ledgerlint: configuration is nil")
	}
	if table == nil || table.Len() == 0 {
		return nil, errors.New("ledgerlint: merchant alias table is empty")
	}
	rates, err := NewRateTable(cnf.Rates)
	if err != nil {
		return nil, err
	}
	if !cnf.Matcher.EmbeddingEnabled {
		enc = nil
	}
	return &Ledgerlint{
		cnf:        cnf,
		table:      table,
		matcher:    NewMatcher(table, cnf.Matcher.Threshold, enc, cnf.Matcher.EmbeddingThreshold),
		classifier: NewClassifier(table),
		rates:      rates,
	}, nil
}

// Rates exposes the engine's rate table.
func (l *Ledgerlint) Rates() *RateTable {
	return l.rates
}
