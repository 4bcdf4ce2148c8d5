package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"velora/internal/config"
	"velora/internal/db"
	"velora/internal/importer"
	categoryrepo "velora/internal/repository/category"
	productrepo "velora/internal/repository/product"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	path := flag.String("file", "", "path to catalog CSV export")
	flag.Parse()
	if *path == "" {
		logger.Fatal("missing -file")
	}

	f, err := os.Open(*path)
	if err != nil {
		logger.Fatalf("open %s: %v", *path, err)
	}
	defer f.Close()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(pool, logger), categoryrepo.NewPostgres(pool))
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import: %v", err)
	}

	logger.Printf("imported %d products", count)
}
