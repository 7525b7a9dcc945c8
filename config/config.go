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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_MATCH_THRESHOLD     = 85
	DEFAULT_EMBEDDING_THRESHOLD = 0.72
	DEFAULT_ROUND_DIGITS        = 2
	DEFAULT_GROUP_BY            = "category"
)

var ConfigStore atomic.Value

type MatcherConfig struct {
	Threshold          int     `json:"threshold" envconfig:"LEDGERLINT_MATCH_THRESHOLD"`
	EmbeddingEnabled   bool    `json:"embedding_enabled" envconfig:"LEDGERLINT_EMBEDDING_ENABLED"`
	EmbeddingModel     string  `json:"embedding_model" envconfig:"LEDGERLINT_EMBEDDING_MODEL"`
	EmbeddingThreshold float64 `json:"embedding_threshold" envconfig:"LEDGERLINT_EMBEDDING_THRESHOLD"`
}

type PipelineConfig struct {
	Workers     int    `json:"workers" envconfig:"LEDGERLINT_WORKERS"`
	GroupBy     string `json:"group_by" envconfig:"LEDGERLINT_GROUP_BY"`
	RoundDigits *int   `json:"round_digits" envconfig:"LEDGERLINT_ROUND_DIGITS"`
	// AssumeMissingUSD decides whether a record with no detected currency is
	// converted at the USD rate or excluded from totals. The two historical
	// behaviors disagreed, so this is an explicit flag rather than a hidden
	// default. Unset means true.
	AssumeMissingUSD *bool `json:"assume_missing_usd" envconfig:"LEDGERLINT_ASSUME_MISSING_USD"`
}

type Configuration struct {
	ProjectName string            `json:"project_name" envconfig:"LEDGERLINT_PROJECT_NAME"`
	Matcher     MatcherConfig     `json:"matcher"`
	Pipeline    PipelineConfig    `json:"pipeline"`
	Rates       map[string]string `json:"rates"`
	AliasFile   string            `json:"alias_file" envconfig:"LEDGERLINT_ALIAS_FILE"`
	RateFile    string            `json:"rate_file" envconfig:"LEDGERLINT_RATE_FILE"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("ledgerlint", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called ledgerlint.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "Ledgerlint"
	}
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)

	if cnf.Matcher.Threshold == 0 {
		cnf.Matcher.Threshold = DEFAULT_MATCH_THRESHOLD
	}
	if cnf.Matcher.EmbeddingThreshold == 0 {
		cnf.Matcher.EmbeddingThreshold = DEFAULT_EMBEDDING_THRESHOLD
	}
	if cnf.Matcher.EmbeddingEnabled && cnf.Matcher.EmbeddingModel == "" {
		cnf.Matcher.EmbeddingModel = "gemini-embedding-001"
		log.Printf("Warning: embedding enabled without a model name. Using default: %s", cnf.Matcher.EmbeddingModel)
	}
	if cnf.Pipeline.Workers <= 0 {
		cnf.Pipeline.Workers = 4
	}
	if cnf.Pipeline.GroupBy == "" {
		cnf.Pipeline.GroupBy = DEFAULT_GROUP_BY
	}
	if cnf.Pipeline.RoundDigits == nil {
		d := DEFAULT_ROUND_DIGITS
		cnf.Pipeline.RoundDigits = &d
	}
	if cnf.Pipeline.AssumeMissingUSD == nil {
		b := true
		cnf.Pipeline.AssumeMissingUSD = &b
	}

	return cnf.validate()
}

func (cnf *Configuration) validate() error {
	err := validation.ValidateStruct(&cnf.Matcher,
		validation.Field(&cnf.Matcher.Threshold, validation.Min(0), validation.Max(100)),
		validation.Field(&cnf.Matcher.EmbeddingThreshold, validation.Min(0.0), validation.Max(1.0)),
	)
	if err != nil {
		return err
	}
	return validation.ValidateStruct(&cnf.Pipeline,
		validation.Field(&cnf.Pipeline.GroupBy, validation.In("category", "merchant", "currency", "date")),
	)
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.Pipeline.RoundDigits == nil || mockConfig.Pipeline.AssumeMissingUSD == nil {
		_ = mockConfig.validateAndAddDefaults()
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
