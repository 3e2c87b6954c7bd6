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


package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridia/answerit/engine"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "qa_database.json", cfg.StorePath)
	assert.Equal(t, "index_cache", cfg.CachePath)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Embedding.Host)
	assert.Equal(t, "embeddinggemma", cfg.Embedding.Model)
	assert.Equal(t, float32(engine.DefaultThreshold), cfg.Retrieval.Threshold)
	assert.Equal(t, engine.DefaultTopK, cfg.Retrieval.TopK)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
store_path: /data/qa.json
cache_path: /data/cache
embedding:
  host: http://embedder:8080
  model: nomic-embed-text
  timeout_secs: 10
retrieval:
  threshold: 0.85
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/qa.json", cfg.StorePath)
	assert.Equal(t, "/data/cache", cfg.CachePath)
	assert.Equal(t, "http://embedder:8080", cfg.Embedding.Host)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, float32(0.85), cfg.Retrieval.Threshold)
	assert.Equal(t, 5, cfg.Retrieval.TopK)

	aiConfig := cfg.AIConfig()
	assert.Equal(t, "http://embedder:8080", aiConfig.EmbeddingHost)
	assert.Equal(t, 10*time.Second, aiConfig.Timeout)
}

func TestLoad_PartialFileKeepsDefaultsForRest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store_path: custom.json\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom.json", cfg.StorePath)
	assert.Equal(t, "index_cache", cfg.CachePath)
	assert.Equal(t, "embeddinggemma", cfg.Embedding.Model)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store_path: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Retrieval.Threshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Retrieval.TopK = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.StorePath = ""
	assert.Error(t, cfg.Validate())
}
