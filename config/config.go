// Copyright 2026 Veridia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads the YAML configuration for the answerit CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/veridia/answerit/ai"
	"github.com/veridia/answerit/engine"
)

// EmbeddingConfig configures the OpenAI-compatible embedding backend.
type EmbeddingConfig struct {
	Host        string `yaml:"host"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig configures match selection.
type RetrievalConfig struct {
	Threshold float32 `yaml:"threshold"`
	TopK      int     `yaml:"top_k"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	StorePath string          `yaml:"store_path"`
	CachePath string          `yaml:"cache_path"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// Load reads a config from path. A missing file returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.StorePath == "" {
		cfg.StorePath = "qa_database.json"
	}
	if cfg.CachePath == "" {
		cfg.CachePath = "index_cache"
	}

	defaults := ai.DefaultConfig()
	if cfg.Embedding.Host == "" {
		cfg.Embedding.Host = defaults.EmbeddingHost
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaults.EmbeddingModel
	}
	if cfg.Embedding.TimeoutSecs <= 0 {
		cfg.Embedding.TimeoutSecs = int(defaults.Timeout / time.Second)
	}

	if cfg.Retrieval.Threshold == 0 {
		cfg.Retrieval.Threshold = engine.DefaultThreshold
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = engine.DefaultTopK
	}
}

// AIConfig converts the embedding section to an ai.Config.
func (c *AppConfig) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.Embedding.Host),
		ai.WithModel(c.Embedding.Model),
		ai.WithTimeout(time.Duration(c.Embedding.TimeoutSecs)*time.Second),
	)
}

// Validate checks the configuration for values the system cannot run with.
func (c *AppConfig) Validate() error {
	if c.StorePath == "" {
		return errors.New("store_path is required")
	}
	if c.CachePath == "" {
		return errors.New("cache_path is required")
	}
	if c.Retrieval.Threshold < -1 || c.Retrieval.Threshold > 1 {
		return fmt.Errorf("retrieval threshold must be within [-1, 1], got %v", c.Retrieval.Threshold)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval top_k must be at least 1, got %d", c.Retrieval.TopK)
	}
	return nil
}
