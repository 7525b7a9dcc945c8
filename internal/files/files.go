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

// Package files holds the file-format collaborators of the pipeline: CSV
// ingestion, alias-table and rate-override loading, and report output.
package files

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/ledgerlint/ledgerlint/model"
)

// ReadRows reads a CSV transaction export into raw records. The first row is
// the header; header names are trimmed and lowercased so "Amount" and
// "amount" address the same field. Ragged rows are tolerated: missing cells
// read as "".
func ReadRows(path string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open transactions file %s", path)
	}
	defer f.Close()
	return readRows(f, path)
}

func readRows(r io.Reader, path string) ([]model.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "read header of %s", path)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var records []model.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read row %d of %s", len(records)+2, path)
		}
		record := make(model.RawRecord, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(row) {
				record[name] = row[i]
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// LoadAliasTable reads a merchant alias table from a JSON file: an object
// mapping canonical name to an array of aliases (or a single alias string).
// An empty table is rejected here rather than letting every merchant
// downstream resolve to no_merchant_map.
func LoadAliasTable(path string) (*model.AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read alias file %s", path)
	}
	table := model.NewAliasTable()
	if err := json.Unmarshal(data, table); err != nil {
		return nil, errors.Wrapf(err, "parse alias file %s", path)
	}
	if table.Len() == 0 {
		return nil, errors.Errorf("alias file %s contains no merchants", path)
	}
	return table, nil
}

// LoadRates reads currency rate overrides from a JSON file: an object mapping
// currency code to a USD-per-unit rate string or number.
func LoadRates(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read rate file %s", path)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "parse rate file %s", path)
	}
	rates := make(map[string]string, len(raw))
	for code, msg := range raw {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			var n json.Number
			if err := json.Unmarshal(msg, &n); err != nil {
				return nil, errors.Errorf("rate file %s: rate for %s is neither string nor number", path, code)
			}
			s = n.String()
		}
		rates[code] = s
	}
	return rates, nil
}

// WriteReport writes the report as indented JSON, to stdout when path is "".
func WriteReport(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write report to %s", path)
	}
	return nil
}

// WriteEnriched streams enriched records as JSON lines, to stdout when path
// is "".
func WriteEnriched(records []model.EnrichedRecord, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create output file %s", path)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return errors.Wrapf(err, "encode record %d", i)
		}
	}
	return nil
}
