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

	"github.com/ledgerlint/ledgerlint/model"
)

// CategoryRule is one (pattern, label) pair of the prioritized rule list.
// Rules are evaluated in order and the first match wins, so more specific
// patterns must precede generic ones.
type CategoryRule struct {
	Pattern *regexp.Regexp
	Label   string
}

// defaultCategoryRules is the ordered heuristic list applied to the
// lowercased raw descriptor when no canonical mapping exists. The order is a
// correctness contract: branded rules come before the generic rules that
// would otherwise shadow them.
var defaultCategoryRules = []CategoryRule{
	{regexp.MustCompile(`rent|landlord|mortgage|apartment`), "Housing"},
	{regexp.MustCompile(`\batm\b|withdrawal|cash advance`), "Cash"},
	{regexp.MustCompile(`uber|lyft|\btaxi\b|rideshare`), "Transport"},
	{regexp.MustCompile(`starbucks|coffee|espresso|\bcafe\b`), "Food"},
	{regexp.MustCompile(`whole foods|wholefds|trader joe`), "Groceries"},
	{regexp.MustCompile(`grocery|supermarket|\bmarket\b`), "Groceries"},
	{regexp.MustCompile(`walmart|wal-mart|\btarget\b|costco`), "Groceries"},
	{regexp.MustCompile(`amazon|amzn|marketplace|\bebay\b|\betsy\b`), "Shopping"},
	{regexp.MustCompile(`exxon|shell|chevron|\bbp\b|fuel|gas station|petrol`), "Fuel"},
	{regexp.MustCompile(`\bcvs\b|walgreens|pharmacy|drugstore`), "Healthcare"},
	{regexp.MustCompile(`clinic|dental|medical|hospital`), "Healthcare"},
	{regexp.MustCompile(`netflix|spotify|hulu|disney`), "Entertainment"},
	{regexp.MustCompile(`subscription|membership`), "Subscription"},
	{regexp.MustCompile(`\bloan\b|\bdebt\b|lending|repayment`), "Debt"},
	{regexp.MustCompile(`staples|office`), "Office"},
	{regexp.MustCompile(`bakery|boulangerie|patisserie`), "Food"},
	{regexp.MustCompile(`cinema|\bmovie\b|theater|theatre`), "Entertainment"},
}

// canonicalCategories maps canonical merchant names to their spending
// category. Lookup is attempted before any raw-string heuristic.
var canonicalCategories = map[string]string{
	"Uber":                 "Transport",
	"Lyft":                 "Transport",
	"Starbucks":            "Food",
	"Chipotle":             "Food",
	"Amazon":               "Shopping",
	"Walmart":              "Groceries",
	"Target":               "Groceries",
	"Whole Foods":          "Groceries",
	"Trader Joe's":         "Groceries",
	"Corner Store":         "Groceries",
	"Neighborhood Grocery": "Groceries",
	"Shell":                "Fuel",
	"ExxonMobil":           "Fuel",
	"Chevron":              "Fuel",
	"Spotify":              "Entertainment",
	"Netflix":              "Entertainment",
	"CVS":                  "Healthcare",
	"Walgreens":            "Healthcare",
	"Staples":              "Office",
}

// Classifier maps a canonical merchant, or failing that a raw descriptor, to
// a spending category.
type Classifier struct {
	rules     []CategoryRule
	canonical map[string]string
	table     *model.AliasTable
}

// NewClassifier builds a classifier with the default rule list and canonical
// table. The alias table feeds the last-resort canonical-substring search.
func NewClassifier(table *model.AliasTable) *Classifier {
	return &Classifier{
		rules:     defaultCategoryRules,
		canonical: canonicalCategories,
		table:     table,
	}
}

// Classify returns the spending category for a record, or "" when no rule
// matches. The canonical lookup wins over raw heuristics; heuristics run in
// rule order, first match wins; the final fallback searches each canonical
// name's lowercase form inside the raw string.
func (c *Classifier) Classify(canonical, raw string) string {
	if canonical != "" {
		if label, ok := c.canonical[canonical]; ok {
			return label
		}
	}
	lraw := strings.ToLower(strings.TrimSpace(raw))
	if lraw == "" {
		return ""
	}
	for _, rule := range c.rules {
		if rule.Pattern.MatchString(lraw) {
			return rule.Label
		}
	}
	if c.table != nil {
		for _, name := range c.table.Canonicals() {
			if strings.Contains(lraw, strings.ToLower(name)) {
				if label, ok := c.canonical[name]; ok {
					return label
				}
			}
		}
	}
	return ""
}
