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
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Issue tags recorded by the normalizers when a repair heuristic fires or a
// match resolves with less than full confidence.
const (
	IssueNormalizedSpace             = "normalized_space"
	IssueUnicodeDigitsConverted      = "unicode_digits_converted"
	IssueNormalizedDecimalSeparators = "normalized_decimal_separators"
	IssueRemovedApostropheGrouping   = "removed_apostrophe_grouping"
	IssueCommaAsDecimal              = "comma_as_decimal"
	IssueRepairedMultipleDots        = "repaired_multiple_dots"

	IssueFuzzyMatched           = "fuzzy_matched"
	IssueAggressiveFuzzyMatched = "aggressive_fuzzy_matched"
	IssueEmbeddingMatched       = "embedding_matched"
	IssueSubstringMatched       = "substring_matched"
	IssueLowConfidence          = "low_confidence"
	IssueNoMatch                = "no_match"
	IssueNoMerchantMap          = "no_merchant_map"
	IssueEmptyMerchant          = "empty_merchant"
)

// RawRecord is one input row as read by the ingestion collaborator: a mapping
// of field name to the raw, untouched string. A missing field and an empty
// string are treated the same by the normalizers.
type RawRecord map[string]string

// Field returns the named raw field, or "" when absent.
func (r RawRecord) Field(name string) string {
	if r == nil {
		return ""
	}
	return r[name]
}

// ParsedAmount is the structured result of amount normalization. Value is nil
// when the raw input could not be reduced to a numeric token after all repair
// heuristics; Currency is the detected 3-letter ISO code or "".
type ParsedAmount struct {
	Value    *decimal.Decimal `json:"value,omitempty"`
	Currency string           `json:"currency,omitempty"`
	Issues   []string         `json:"issues,omitempty"`
}

// HasValue reports whether a numeric value was extracted.
func (p ParsedAmount) HasValue() bool {
	return p.Value != nil
}

// MerchantMatch is the result of resolving a raw merchant descriptor against
// the alias table. Canonical is "" when no tier accepted a candidate.
// Score is 100 exactly when the match was an exact alias hit.
type MerchantMatch struct {
	Canonical string   `json:"canonical,omitempty"`
	Score     int      `json:"score"`
	Issues    []string `json:"issues,omitempty"`
}

// EnrichedRecord is a raw record plus everything the pipeline derived from it.
// NormalizedDate is an ISO YYYY-MM-DD string, or "" when unparseable.
type EnrichedRecord struct {
	Raw            RawRecord        `json:"raw"`
	Amount         ParsedAmount     `json:"amount"`
	NormalizedDate string           `json:"date,omitempty"`
	Merchant       MerchantMatch    `json:"merchant"`
	Category       string           `json:"category,omitempty"`
	AmountUSD      *decimal.Decimal `json:"amount_usd,omitempty"`
}

func (e *EnrichedRecord) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ReportBucket is one grouped row of the spending report. Category is "" for
// the bucket of records that resolved to no category.
type ReportBucket struct {
	Category  string          `json:"category"`
	AmountUSD decimal.Decimal `json:"amount"`
	Pct       float64         `json:"pct"`
}

// Report is the aggregated spending report. ByCategory is ordered descending
// by amount; TopCategory follows the deterministic tie-break (lexicographically
// smallest label among buckets tied at the maximum rounded amount).
type Report struct {
	ReportID    string          `json:"report_id"`
	TopCategory string          `json:"top_category"`
	Amount      decimal.Decimal `json:"amount"`
	TopAmount   decimal.Decimal `json:"top_amount"`
	ByCategory  []ReportBucket  `json:"by_category"`
	TotalUSD    decimal.Decimal `json:"total_usd"`
	GeneratedAt time.Time       `json:"generated_at"`
}

func (r *Report) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// AliasTable maps canonical merchant names to their known raw-text variants.
// Iteration order is the insertion order of the table, so equally-scored
// candidates resolve the same way on every run. The table is immutable for
// the lifetime of a processing run once handed to the matcher.
type AliasTable struct {
	canonicals []string
	aliases    map[string][]string
}

// NewAliasTable returns an empty alias table.
func NewAliasTable() *AliasTable {
	return &AliasTable{aliases: make(map[string][]string)}
}

// Add registers a canonical name with its aliases. The canonical name itself
// is always included as a candidate. Adding the same canonical twice appends
// to its alias list without disturbing iteration order.
func (t *AliasTable) Add(canonical string, aliases ...string) {
	if t.aliases == nil {
		t.aliases = make(map[string][]string)
	}
	if _, seen := t.aliases[canonical]; !seen {
		t.canonicals = append(t.canonicals, canonical)
		t.aliases[canonical] = []string{canonical}
	}
	t.aliases[canonical] = append(t.aliases[canonical], aliases...)
}

// Canonicals returns canonical names in insertion order.
func (t *AliasTable) Canonicals() []string {
	return t.canonicals
}

// Aliases returns the candidate strings for a canonical name, the canonical
// name itself first.
func (t *AliasTable) Aliases(canonical string) []string {
	return t.aliases[canonical]
}

// Len returns the number of canonical entries.
func (t *AliasTable) Len() int {
	return len(t.canonicals)
}

// UnmarshalJSON decodes the external alias-table shape: a JSON object mapping
// canonical name to either an array of alias strings or a single alias
// string. Key order in the document becomes the table's iteration order,
// which a plain map round-trip would destroy.
func (t *AliasTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("alias table must be a JSON object")
	}
	t.canonicals = nil
	t.aliases = make(map[string][]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		canonical, ok := keyTok.(string)
		if !ok {
			return errors.New("alias table key is not a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			var one string
			if err := json.Unmarshal(raw, &one); err != nil {
				return err
			}
			many = []string{one}
		}
		t.Add(canonical, many...)
	}
	return nil
}
