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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/veridia/answerit"
	"github.com/veridia/answerit/config"
	"github.com/veridia/answerit/core"
)

func main() {
	// Missing .env files are fine, environment variables still apply.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "answerit",
		Usage: "Semantic question-answer retrieval over a trained knowledge base",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"ANSWERIT_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Value:   "config.yaml",
				EnvVars: []string{"ANSWERIT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL (overrides config)",
				EnvVars: []string{"ANSWERIT_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name (overrides config)",
				EnvVars: []string{"ANSWERIT_EMBEDDING_MODEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "train",
				Usage:     "Train the knowledge base from a JSON file of question-answer pairs",
				ArgsUsage: "<pairs.json>",
				Action:    trainCommand,
			},
			{
				Name:      "ask",
				Usage:     "Ask a question and print the best answer",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "language",
						Usage: "Language hint for the fallback answer (en, ar)",
						Value: core.LanguageEnglish,
					},
				},
			},
			{
				Name:   "rebuild",
				Usage:  "Re-embed all stored questions and rewrite the index cache",
				Action: rebuildCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print knowledge base statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openKnowledgeBase(ctx context.Context, c *cli.Context) (*answerit.KnowledgeBase, *config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if host := c.String("embedding-host"); host != "" {
		cfg.Embedding.Host = host
	}
	if model := c.String("embedding-model"); model != "" {
		cfg.Embedding.Model = model
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	kb, err := answerit.Open(ctx, cfg.StorePath, cfg.CachePath,
		answerit.WithAIConfig(cfg.AIConfig()),
		answerit.WithThreshold(cfg.Retrieval.Threshold),
		answerit.WithTopK(cfg.Retrieval.TopK),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}
	return kb, cfg, nil
}

// trainingFile is the accepted input format, matching the store's own
// on-disk layout so an exported database can be re-imported directly.
type trainingFile struct {
	QAPairs []core.QAPair `json:"qa_pairs"`
}

func trainCommand(c *cli.Context) error {
	ctx := context.Background()

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("path to a JSON file of question-answer pairs is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read training file: %w", err)
	}
	var file trainingFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse training file: %w", err)
	}
	if len(file.QAPairs) == 0 {
		return fmt.Errorf("training file contains no qa_pairs")
	}

	kb, _, err := openKnowledgeBase(ctx, c)
	if err != nil {
		return err
	}
	defer kb.Close()

	outcomes, err := kb.Train(ctx, file.QAPairs)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	accepted := 0
	for _, outcome := range outcomes {
		if outcome.Accepted {
			accepted++
			continue
		}
		fmt.Fprintf(os.Stderr, "rejected %q: %v\n", outcome.Pair.Question, outcome.Err)
	}
	fmt.Fprintf(os.Stderr, "trained %d of %d pairs\n", accepted, len(outcomes))
	if accepted < len(outcomes) {
		return fmt.Errorf("%d pairs were rejected", len(outcomes)-accepted)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	kb, _, err := openKnowledgeBase(ctx, c)
	if err != nil {
		return err
	}
	defer kb.Close()

	result, err := kb.Ask(ctx, question, c.String("language"))
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	fmt.Println(result.Answer)
	if result.Matched {
		fmt.Fprintf(os.Stderr, "matched record %d with confidence %.3f\n", result.RecordId, result.Confidence)
	} else {
		fmt.Fprintf(os.Stderr, "no confident match (best %.3f, threshold %.3f)\n", result.Confidence, kb.Threshold())
	}
	return nil
}

func rebuildCommand(c *cli.Context) error {
	ctx := context.Background()

	kb, _, err := openKnowledgeBase(ctx, c)
	if err != nil {
		return err
	}
	defer kb.Close()

	if err := kb.RebuildIndex(ctx); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	count, err := kb.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "rebuilt index over %d records\n", count)
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	kb, cfg, err := openKnowledgeBase(ctx, c)
	if err != nil {
		return err
	}
	defer kb.Close()

	count, err := kb.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("store:     %s\n", cfg.StorePath)
	fmt.Printf("cache:     %s\n", cfg.CachePath)
	fmt.Printf("records:   %d\n", count)
	fmt.Printf("model:     %s\n", cfg.Embedding.Model)
	fmt.Printf("threshold: %.2f\n", cfg.Retrieval.Threshold)
	fmt.Printf("top_k:     %d\n", cfg.Retrieval.TopK)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
