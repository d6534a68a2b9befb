package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/drukmotors/dealership-backend/config"
	"github.com/drukmotors/dealership-backend/internal/db"
	"github.com/drukmotors/dealership-backend/internal/registry"
	"github.com/drukmotors/dealership-backend/internal/store"
)

// Bulk-imports a parts catalog from an XLSX workbook. Expected columns:
// name | description | price | stock | category
type partRow struct {
	Name        string
	Description string
	Price       float64
	Stock       int64
	Category    string
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	reg := registry.New()
	if err := db.Migrate(reg); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	dataStore := store.NewGorm(db.GetDB(), reg)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readPartsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total parts to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	ctx := context.Background()
	imported := 0
	for _, row := range rows {
		categoryID, err := resolveCategory(ctx, dataStore, row.Category)
		if err != nil {
			log.Fatalf("Failed to resolve category %q: %v", row.Category, err)
		}

		now := time.Now().UTC()
		_, err = dataStore.Insert(ctx, "parts", store.Record{
			"name":        row.Name,
			"description": row.Description,
			"price":       row.Price,
			"stock":       row.Stock,
			"categoryId":  categoryID,
			"createdAt":   now,
			"updatedAt":   now,
		})
		if err != nil {
			log.Fatalf("Failed to insert part %q: %v", row.Name, err)
		}
		imported++

		if imported%100 == 0 {
			fmt.Printf("Imported %d parts...\n", imported)
		}
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total parts imported: %d\n", imported)
}

func readPartsFromXLSX(filePath string) ([]partRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var parts []partRow
	seen := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 5 {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(row[1])
		priceStr := strings.TrimSpace(row[2])
		stockStr := strings.TrimSpace(row[3])
		category := strings.TrimSpace(row[4])

		if name == "" || category == "" {
			skippedCount++
			continue
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			skippedCount++
			continue
		}

		stock, err := strconv.ParseInt(stockStr, 10, 64)
		if err != nil || stock < 0 {
			skippedCount++
			continue
		}

		// Deduplicate by name within a category
		key := fmt.Sprintf("%s|%s", category, name)
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		parts = append(parts, partRow{
			Name:        name,
			Description: description,
			Price:       price,
			Stock:       stock,
			Category:    category,
		})
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid parts: %d\n", len(parts))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)

	return parts, nil
}

// resolveCategory finds a category by name, creating it when missing.
func resolveCategory(ctx context.Context, s store.Store, name string) (interface{}, error) {
	matches, _, err := s.List(ctx, "categories", store.Query{
		Where: store.Eq("name", name),
		Sort:  store.Sort{Field: "id"},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		return matches[0]["id"], nil
	}

	created, err := s.Insert(ctx, "categories", store.Record{"name": name})
	if err != nil {
		return nil, err
	}
	fmt.Printf("Created category: %s\n", name)
	return created["id"], nil
}
