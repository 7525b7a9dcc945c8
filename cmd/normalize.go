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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerlint/ledgerlint"
	"github.com/ledgerlint/ledgerlint/internal/files"
)

// normalizeCommands enriches a transactions file and writes the records as
// JSON lines.
func normalizeCommands(app *ledgerlintInstance) *cobra.Command {
	var input, out string
	var preview int

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize a CSV transaction export into enriched JSON records",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := files.ReadRows(input)
			if err != nil {
				return err
			}
			enriched, err := app.engine.EnrichBatch(cmd.Context(), records)
			if err != nil {
				return err
			}
			if preview > 0 && preview < len(enriched) {
				enriched = enriched[:preview]
			}
			return files.WriteEnriched(enriched, out)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV transaction export to normalize")
	cmd.Flags().StringVar(&out, "out", "", "write records to this file instead of stdout")
	cmd.Flags().IntVar(&preview, "preview", 0, "emit only the first N records")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// reportCommands runs the full pipeline and prints the spending report.
func reportCommands(app *ledgerlintInstance) *cobra.Command {
	var input, out string
	var human bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate a CSV transaction export into a spending report",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := files.ReadRows(input)
			if err != nil {
				return err
			}
			_, report, err := app.engine.Run(cmd.Context(), records)
			if err != nil {
				return err
			}
			if human {
				fmt.Print(ledgerlint.HumanReadable(report))
				return nil
			}
			return files.WriteReport(report, out)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV transaction export to aggregate")
	cmd.Flags().StringVar(&out, "out", "", "write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&human, "human", false, "print a human-readable summary instead of JSON")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
