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
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/unicode/norm"

	"github.com/ledgerlint/ledgerlint/model"
)

// Encoder is the optional embedding capability injected into the matcher.
// Implementations must be safe for concurrent use after construction.
type Encoder interface {
	Available() bool
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// candidate is one cleaned alias with the canonical name it resolves to.
type candidate struct {
	canonical string
	cleaned   string
}

// Matcher resolves raw merchant descriptors against an alias table through a
// tiered strategy chain: exact, fuzzy, aggressive-clean retry, embedding
// similarity (when an Encoder is available), substring. Derived state
// (cleaned candidates, embedding vectors) is built exactly once on first use
// and read-only afterwards.
type Matcher struct {
	table              *model.AliasTable
	threshold          int
	encoder            Encoder
	embeddingThreshold float64

	once       sync.Once
	candidates []candidate
	vectors    [][]float32
}

// NewMatcher builds a matcher over an alias table. threshold is the fuzzy
// acceptance score (0-100); enc may be nil when no embedding capability is
// configured.
func NewMatcher(table *model.AliasTable, threshold int, enc Encoder, embeddingThreshold float64) *Matcher {
	return &Matcher{
		table:              table,
		threshold:          threshold,
		encoder:            enc,
		embeddingThreshold: embeddingThreshold,
	}
}

// Warm builds the matcher's derived state eagerly. Safe to skip; Resolve
// falls back to lazy once-only initialization.
func (m *Matcher) Warm(ctx context.Context) {
	m.prepare(ctx)
}

// prepare builds the cleaned-candidate list in alias-table insertion order
// and, when an encoder is available, the candidate vector cache.
func (m *Matcher) prepare(ctx context.Context) {
	m.once.Do(func() {
		if m.table == nil {
			return
		}
		seen := make(map[string]bool)
		for _, canonical := range m.table.Canonicals() {
			for _, alias := range m.table.Aliases(canonical) {
				cleaned := CleanMerchant(alias)
				if cleaned == "" || seen[cleaned] {
					continue
				}
				seen[cleaned] = true
				m.candidates = append(m.candidates, candidate{canonical: canonical, cleaned: cleaned})
			}
		}
		if m.encoder == nil || !m.encoder.Available() {
			return
		}
		texts := make([]string, len(m.candidates))
		for i, c := range m.candidates {
			texts[i] = c.cleaned
		}
		vectors, err := m.encoder.Encode(ctx, texts)
		if err != nil || len(vectors) != len(texts) {
			logrus.WithError(err).Warn("embedding candidate encode failed, semantic tier disabled")
			return
		}
		m.vectors = vectors
	})
}

// Resolve maps a raw merchant descriptor to a canonical name with a
// confidence score. Given the same alias table and input, the result is
// identical on every call: candidates are iterated in table insertion order
// and only a strictly better score displaces the current best.
func (m *Matcher) Resolve(ctx context.Context, raw string) model.MerchantMatch {
	if m.table == nil || m.table.Len() == 0 {
		return model.MerchantMatch{Issues: []string{model.IssueNoMerchantMap}}
	}
	cleaned := CleanMerchant(raw)
	if cleaned == "" {
		return model.MerchantMatch{Issues: []string{model.IssueEmptyMerchant}}
	}
	m.prepare(ctx)

	// Tier 1: exact hit on a cleaned alias or canonical name.
	for _, c := range m.candidates {
		if c.cleaned == cleaned {
			return model.MerchantMatch{Canonical: c.canonical, Score: 100}
		}
	}

	// Tier 2: token-set similarity across all candidates, refined with
	// partial and token-sort similarity against the best one.
	best, score := m.fuzzyBest(cleaned)
	if score >= m.threshold {
		return model.MerchantMatch{Canonical: best.canonical, Score: score, Issues: []string{model.IssueFuzzyMatched}}
	}

	// Tier 3: strip low-signal tokens and retry.
	aggressive := aggressiveClean(cleaned)
	if aggressive != "" && aggressive != cleaned {
		if aggBest, aggScore := m.fuzzyBest(aggressive); aggScore >= m.threshold {
			return model.MerchantMatch{Canonical: aggBest.canonical, Score: aggScore, Issues: []string{model.IssueAggressiveFuzzyMatched}}
		} else if aggScore > score {
			best, score = aggBest, aggScore
		}
	}

	// Tier 4: embedding similarity, when the capability is present.
	if match, ok := m.embeddingBest(ctx, aggressive); ok {
		return match
	}

	// Tier 5: substring relation in either direction.
	for _, c := range m.candidates {
		if strings.Contains(cleaned, c.cleaned) || strings.Contains(c.cleaned, cleaned) {
			return model.MerchantMatch{Canonical: c.canonical, Score: 75, Issues: []string{model.IssueSubstringMatched}}
		}
	}

	if score > 0 {
		return model.MerchantMatch{Score: score, Issues: []string{model.IssueLowConfidence}}
	}
	return model.MerchantMatch{Issues: []string{model.IssueNoMatch}}
}

// fuzzyBest returns the best-scoring candidate for the input. Scores are
// capped at 99 so that 100 remains the signature of an exact hit.
func (m *Matcher) fuzzyBest(input string) (candidate, int) {
	var best candidate
	bestScore := -1
	for _, c := range m.candidates {
		if s := tokenSetRatio(input, c.cleaned); s > bestScore {
			best, bestScore = c, s
		}
	}
	if bestScore < 0 {
		return candidate{}, 0
	}
	score := bestScore
	if s := partialRatio(input, best.cleaned); s > score {
		score = s
	}
	if s := tokenSortRatio(input, best.cleaned); s > score {
		score = s
	}
	if score > 99 {
		score = 99
	}
	return best, score
}

// embeddingBest runs the semantic tier: cosine similarity of the
// aggressively cleaned input against the cached candidate vectors.
func (m *Matcher) embeddingBest(ctx context.Context, input string) (model.MerchantMatch, bool) {
	if m.encoder == nil || !m.encoder.Available() || len(m.vectors) == 0 || input == "" {
		return model.MerchantMatch{}, false
	}
	encoded, err := m.encoder.Encode(ctx, []string{input})
	if err != nil || len(encoded) != 1 {
		logrus.WithError(err).Debug("embedding encode failed for input, skipping semantic tier")
		return model.MerchantMatch{}, false
	}
	bestIdx, bestSim := -1, 0.0
	for i, vec := range m.vectors {
		if sim := cosineSimilarity(encoded[0], vec); sim > bestSim {
			bestIdx, bestSim = i, sim
		}
	}
	if bestIdx < 0 || bestSim < m.embeddingThreshold {
		return model.MerchantMatch{}, false
	}
	score := int(math.Round(bestSim * 100))
	if score > 99 {
		score = 99
	}
	return model.MerchantMatch{
		Canonical: m.candidates[bestIdx].canonical,
		Score:     score,
		Issues:    []string{model.IssueEmbeddingMatched},
	}, true
}

var (
	storeNumberRe  = regexp.MustCompile(`#\d+`)
	longDigitRunRe = regexp.MustCompile(`^\d{4,}$`)
	noiseWords     = map[string]bool{"store": true, "atm": true, "pos": true, "terminal": true}
	// Aggressive pass additionally drops these low-signal tokens.
	aggressiveNoise = map[string]bool{"supercenter": true, "branch": true, "center": true}
	trailingNumRe   = regexp.MustCompile(`^\d{2,}$`)
)

// CleanMerchant normalizes a merchant descriptor for comparison: NFKC fold,
// lowercase, punctuation and symbols to spaces, store numbers and
// transaction-id digit runs removed, spaced-out single letters closed up,
// whitespace collapsed. The same function is applied to the raw input and to
// every alias before matching.
func CleanMerchant(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	s = storeNumberRe.ReplaceAllString(s, " ")
	var b strings.Builder
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	tokens := strings.Fields(b.String())
	kept := tokens[:0]
	for _, tok := range tokens {
		if noiseWords[tok] || longDigitRunRe.MatchString(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(joinSingleLetterRuns(kept), " ")
}

// joinSingleLetterRuns closes up visually spaced-out strings: a run of two
// or more single-letter tokens collapses into one word ("a m a z o n" →
// "amazon").
func joinSingleLetterRuns(tokens []string) []string {
	var out []string
	i := 0
	for i < len(tokens) {
		if len(tokens[i]) == 1 && i+1 < len(tokens) && len(tokens[i+1]) == 1 {
			j := i
			var run strings.Builder
			for j < len(tokens) && len(tokens[j]) == 1 {
				run.WriteString(tokens[j])
				j++
			}
			out = append(out, run.String())
			i = j
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

// aggressiveClean strips additional low-signal tokens and trailing numeric
// groups from an already-cleaned string.
func aggressiveClean(cleaned string) string {
	tokens := strings.Fields(cleaned)
	kept := tokens[:0]
	for _, tok := range tokens {
		if aggressiveNoise[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	for len(kept) > 0 && trailingNumRe.MatchString(kept[len(kept)-1]) {
		kept = kept[:len(kept)-1]
	}
	return strings.Join(kept, " ")
}

// ratio is the base levenshtein similarity on a 0-100 scale.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	ar, br := []rune(a), []rune(b)
	maxLen := len(ar)
	if len(br) > maxLen {
		maxLen = len(br)
	}
	if maxLen == 0 {
		return 100
	}
	distance := levenshtein.DistanceForStrings(ar, br, levenshtein.DefaultOptions)
	return int(math.Round(100 * (1 - float64(distance)/float64(maxLen))))
}

// partialRatio is the best ratio of the shorter string against every
// equal-length window of the longer one.
func partialRatio(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) > len(br) {
		ar, br = br, ar
	}
	if len(ar) == 0 {
		return 0
	}
	if len(ar) == len(br) {
		return ratio(string(ar), string(br))
	}
	best := 0
	for i := 0; i+len(ar) <= len(br); i++ {
		if s := ratio(string(ar), string(br[i:i+len(ar)])); s > best {
			best = s
		}
	}
	return best
}

// tokenSortRatio compares the two strings with their tokens sorted.
func tokenSortRatio(a, b string) int {
	return ratio(sortTokens(a), sortTokens(b))
}

// tokenSetRatio compares the sorted token intersection against each side's
// sorted remainder, fuzzywuzzy-style, and takes the best of the three.
func tokenSetRatio(a, b string) int {
	setA := tokenSet(a)
	setB := tokenSet(b)
	var inter, diffA, diffB []string
	for tok := range setA {
		if setB[tok] {
			inter = append(inter, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range setB {
		if !setA[tok] {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	t0 := strings.Join(inter, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(diffA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(diffB, " "))

	best := ratio(t0, t1)
	if s := ratio(t0, t2); s > best {
		best = s
	}
	if s := ratio(t1, t2); s > best {
		best = s
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// cosineSimilarity of two vectors; 0 when either has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
