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
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ledgerlint/ledgerlint"
	"github.com/ledgerlint/ledgerlint/config"
	"github.com/ledgerlint/ledgerlint/internal/embeddings"
	"github.com/ledgerlint/ledgerlint/internal/files"
)

// Ledgerlint represents the CLI application, encapsulating the root Cobra
// command.
type Ledgerlint struct {
	cmd *cobra.Command
}

// ledgerlintInstance holds the engine and its configuration for use by the
// subcommands.
type ledgerlintInstance struct {
	engine *ledgerlint.Ledgerlint
	cnf    *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the engine before running
// any command. The --aliases and --rates flags override the configured file
// paths.
func preRun(app *ledgerlintInstance, configFile, aliasFile, rateFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}
		if *aliasFile != "" {
			cnf.AliasFile = *aliasFile
		}
		if *rateFile != "" {
			cnf.RateFile = *rateFile
		}

		engine, err := setupLedgerlint(cmd.Context(), cnf)
		if err != nil {
			log.Fatal(err)
		}

		app.engine = engine
		app.cnf = cnf
		return nil
	}
}

// setupLedgerlint builds the engine from the configuration: alias table, rate
// overrides, and the embedding encoder when enabled.
func setupLedgerlint(ctx context.Context, cnf *config.Configuration) (*ledgerlint.Ledgerlint, error) {
	aliasFile := cnf.AliasFile
	if aliasFile == "" {
		aliasFile = "merchants.json"
	}
	table, err := files.LoadAliasTable(aliasFile)
	if err != nil {
		return nil, err
	}

	if cnf.RateFile != "" {
		overrides, err := files.LoadRates(cnf.RateFile)
		if err != nil {
			return nil, err
		}
		if cnf.Rates == nil {
			cnf.Rates = make(map[string]string, len(overrides))
		}
		for code, rate := range overrides {
			cnf.Rates[code] = rate
		}
	}

	var enc ledgerlint.Encoder
	if cnf.Matcher.EmbeddingEnabled {
		enc = embeddings.NewClient(ctx, cnf.Matcher.EmbeddingModel)
	}

	return ledgerlint.New(cnf, table, enc)
}

// NewCLI creates the command-line interface for the application.
func NewCLI() *Ledgerlint {
	var configFile, aliasFile, rateFile string
	app := &ledgerlintInstance{}

	var rootCmd = &cobra.Command{
		Use:   "ledgerlint",
		Short: "Normalize messy transaction exports into clean records and spending reports",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./ledgerlint.json", "Configuration file for ledgerlint")
	rootCmd.PersistentFlags().StringVar(&aliasFile, "aliases", "", "Merchant alias table JSON (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rateFile, "rates", "", "Currency rate overrides JSON (overrides config)")
	rootCmd.PersistentPreRunE = preRun(app, &configFile, &aliasFile, &rateFile)

	rootCmd.AddCommand(normalizeCommands(app))
	rootCmd.AddCommand(reportCommands(app))

	return &Ledgerlint{cmd: rootCmd}
}

func (w Ledgerlint) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
