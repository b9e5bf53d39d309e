// Command vacancyseed loads vacancy YAML files and upserts their embeddings
// into the Qdrant vacancy collection.
package main

import (
	"context"
	"log"

	"github.com/evaluasi/cv-evaluator/internal/adapter/embedding"
	qdrantcli "github.com/evaluasi/cv-evaluator/internal/adapter/vector/qdrant"
	"github.com/evaluasi/cv-evaluator/internal/app"
	"github.com/evaluasi/cv-evaluator/internal/config"
	"github.com/evaluasi/cv-evaluator/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	q := qdrantcli.New(cfg.QdrantURL, cfg.QdrantAPIKey)
	ctx := context.Background()
	if err := app.EnsureVacancyCollection(ctx, q); err != nil {
		log.Fatal(err)
	}
	embedder := embedding.NewGenerator(cfg)
	n, err := seed.SeedDir(ctx, q, embedder, cfg.VacancySeedDir)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("seeded %d vacancies from %s", n, cfg.VacancySeedDir)
}
