// Package main 叙事风格库初始化工具：向量化示例文本并写入 Milvus
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"story-weaver-api/internal/config"
	"story-weaver-api/internal/infrastructure/embedding"
	"story-weaver-api/internal/infrastructure/persistence/milvus"
)

const maxConcurrentEmbeds = 4

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "narration_examples", "directory containing the narration example texts")
	flag.Parse()

	fmt.Println("Starting narration style seeding...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	seeds, skipped := loadSeeds(*dir, defaultSeeds)
	for _, reason := range skipped {
		fmt.Printf("Skipping style %s\n", reason)
	}
	if len(seeds) == 0 {
		fmt.Println("No valid styles to seed.")
		return
	}

	embedder, err := embedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		log.Fatalf("failed to init embedder: %v", err)
	}
	vectorizer := embedding.NewVectorizer(embedder, cfg.Embedding.Dimension)

	// 全文向量化，片段单独截取
	docs := make([]*milvus.StyleDocument, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEmbeds)
	for i, seed := range seeds {
		g.Go(func() error {
			fmt.Printf("Generating embedding for style %s (%d chars)...\n", seed.ID, len(seed.Text))
			vectors, err := vectorizer.Embed(gctx, []string{seed.Text})
			if err != nil {
				return fmt.Errorf("embed style %s: %w", seed.ID, err)
			}
			docs[i] = seed.toDocument(vectors[0])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("failed to embed styles: %v", err)
	}

	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		log.Fatalf("failed to connect milvus: %v", err)
	}
	defer client.Close()

	repo := milvus.NewStyleRepository(client, cfg.Embedding.Dimension)
	if err := repo.EnsureCollection(ctx); err != nil {
		log.Fatalf("failed to prepare style collection: %v", err)
	}

	fmt.Printf("Upserting %d styles...\n", len(docs))
	if err := repo.Upsert(ctx, docs); err != nil {
		log.Fatalf("failed to upsert styles: %v", err)
	}

	fmt.Println("Narration style seeding finished.")
}
