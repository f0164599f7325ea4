package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"storefront-cart/internal/config"
	"storefront-cart/internal/db"
	"storefront-cart/internal/importer"
	"storefront-cart/internal/repository/catalog"
	couponrepo "storefront-cart/internal/repository/coupon"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a products or coupons CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	kind, err := importer.DetectKind(f)
	if err != nil {
		logger.Fatalf("detect csv kind: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		logger.Fatalf("rewind file: %v", err)
	}
	logger.Printf("importing %s from %s", kind, filePath)

	imp := importer.NewCSVImporter(f, catalog.NewPostgres(pool, logger), couponrepo.NewPostgres(pool, logger))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d %s in %s\n", count, kind, time.Since(start).Truncate(time.Millisecond))
}
