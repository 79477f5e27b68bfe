// Command seed fills the knowledge base collection. It ensures the
// collection exists, embeds each item's text, upserts the points, and
// prints the stored points for a quick sanity check.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soff-cloud/playkb/internal/config"
	"github.com/soff-cloud/playkb/internal/index/qdrant"
	logpkg "github.com/soff-cloud/playkb/internal/logger"
	"github.com/soff-cloud/playkb/internal/metrics"
	openaiEmb "github.com/soff-cloud/playkb/internal/transport/openai"
)

type seedItem struct {
	Text    string         `json:"text"`
	Payload map[string]any `json:"payload"`
}

func main() {
	var (
		file  = flag.String("file", "", "JSON file with items to seed; built-in samples when empty")
		limit = flag.Int("limit", 20, "number of stored points to print after seeding")
	)
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	metrics.RegisterEmbeddingMetrics()

	items, err := loadItems(*file)
	if err != nil {
		logger.Fatal("Failed to load items", zap.String("file", *file), zap.Error(err))
	}

	index := qdrant.New(qdrant.Config{
		URL:        cfg.Index.URL,
		Collection: cfg.Index.Collection,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	ctx := context.Background()

	if err := index.EnsureCollection(ctx, cfg.Index.VectorSize); err != nil {
		logger.Fatal("Failed to ensure collection", zap.Error(err))
	}

	points := make([]qdrant.Point, 0, len(items))
	for _, item := range items {
		res, err := embedder.Embed(ctx, item.Text)
		if err != nil {
			logger.Fatal("Failed to embed item", zap.String("text", item.Text), zap.Error(err))
		}

		payload := make(map[string]any, len(item.Payload)+1)
		for k, v := range item.Payload {
			payload[k] = v
		}
		payload[cfg.Index.TextKey] = item.Text

		points = append(points, qdrant.Point{
			ID:      uuid.NewString(),
			Vector:  res.Embedding,
			Payload: payload,
		})
	}

	if err := index.Upsert(ctx, points); err != nil {
		logger.Fatal("Failed to upsert points", zap.Error(err))
	}
	logger.Info("Seeded collection",
		zap.String("collection", cfg.Index.Collection),
		zap.Int("points", len(points)),
	)

	stored, err := index.Scroll(ctx, *limit)
	if err != nil {
		logger.Fatal("Failed to list points", zap.Error(err))
	}
	for _, p := range stored {
		fmt.Printf("id=%s payload=%v\n", p.ID(), p.Payload())
	}
}

// loadItems reads items from a JSON file, or returns the built-in sample
// set when no file is given.
func loadItems(path string) ([]seedItem, error) {
	if path == "" {
		return sampleItems(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var items []seedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, item := range items {
		if item.Text == "" {
			return nil, fmt.Errorf("item %d: text is required", i)
		}
	}
	return items, nil
}

func sampleItems() []seedItem {
	return []seedItem{
		{
			Text: "KPI — samaradorlik ko‘rsatkichlari. Ular jamoaning maqsadga qay darajada erishayotganini o‘lchash uchun ishlatiladi.",
			Payload: map[string]any{
				"question": "kpi nima?",
			},
		},
		{
			Text: "KPI — performance ko‘rsatkichlari. Har bir bo‘lim o‘z KPI larini oyma-oy kuzatib boradi.",
			Payload: map[string]any{
				"question": "kpi degani nima",
			},
		},
		{
			Text: "Pricing — narxlash jarayoni. Mahsulot narxi bozor talabi va tannarxdan kelib chiqib belgilanadi.",
			Payload: map[string]any{
				"question": "pricing nima",
			},
		},
	}
}
