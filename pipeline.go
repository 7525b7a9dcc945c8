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
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerlint/ledgerlint/model"
)

// Input field names recognized by the pipeline.
const (
	FieldAmount   = "amount"
	FieldDate     = "date"
	FieldMerchant = "merchant"
	FieldCurrency = "currency"
)

// EnrichRecord runs every normalizer over one raw record. It is a pure
// function of the record and the engine's immutable state, so records can be
// enriched in any order or in parallel with identical results.
func (l *Ledgerlint) EnrichRecord(ctx context.Context, raw model.RawRecord) model.EnrichedRecord {
	rec := model.EnrichedRecord{Raw: raw}

	rec.Amount = ParseAmount(raw.Field(FieldAmount))
	// An explicit currency column outranks whatever the amount parser
	// detected inside the amount string.
	if explicit := strings.TrimSpace(raw.Field(FieldCurrency)); explicit != "" {
		rec.Amount.Currency = strings.ToUpper(explicit)
	}

	rec.NormalizedDate = ParseDate(raw.Field(FieldDate))
	rec.Merchant = l.matcher.Resolve(ctx, raw.Field(FieldMerchant))
	rec.Category = l.classifier.Classify(rec.Merchant.Canonical, raw.Field(FieldMerchant))

	if rec.Amount.HasValue() {
		if usd, ok := l.rates.ConvertToUSD(*rec.Amount.Value, rec.Amount.Currency, l.assumeMissingUSD()); ok {
			rec.AmountUSD = &usd
		}
	}
	return rec
}

// EnrichBatch enriches a batch concurrently, bounded by the configured worker
// count. Results keep input order. The matcher is warmed first so the workers
// share one candidate cache instead of racing to build it.
func (l *Ledgerlint) EnrichBatch(ctx context.Context, records []model.RawRecord) ([]model.EnrichedRecord, error) {
	l.matcher.Warm(ctx)

	out := make([]model.EnrichedRecord, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cnf.Pipeline.Workers)
	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = l.EnrichRecord(gctx, records[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var unparsed, unmatched int
	for i := range out {
		if !out[i].Amount.HasValue() {
			unparsed++
		}
		if out[i].Merchant.Canonical == "" {
			unmatched++
		}
	}
	logrus.WithFields(logrus.Fields{
		"records":             len(out),
		"workers":             l.cnf.Pipeline.Workers,
		"unparsed_amounts":    unparsed,
		"unmatched_merchants": unmatched,
	}).Info("batch enriched")
	return out, nil
}

// Run enriches a batch and folds it into a spending report.
func (l *Ledgerlint) Run(ctx context.Context, records []model.RawRecord) ([]model.EnrichedRecord, *model.Report, error) {
	enriched, err := l.EnrichBatch(ctx, records)
	if err != nil {
		return nil, nil, err
	}
	report := l.rates.Aggregate(enriched, AggregateOptions{
		GroupBy:          l.cnf.Pipeline.GroupBy,
		RoundDigits:      int32(*l.cnf.Pipeline.RoundDigits),
		AssumeMissingUSD: l.assumeMissingUSD(),
	})
	return enriched, report, nil
}

func (l *Ledgerlint) assumeMissingUSD() bool {
	return l.cnf.Pipeline.AssumeMissingUSD == nil || *l.cnf.Pipeline.AssumeMissingUSD
}
