package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/xuri/excelize/v2"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/db"
)

// Imports a catalog of masterpieces from an XLSX export. Expected
// columns, first row is the header:
//
//	0 serial_number  1 title  2 description  3 category  4 edition
//	5 materials (semicolon separated)  6 gemstones (semicolon separated)
//	7 price  8 deposit_pct  9 vip_only (yes/no)  10 year_created  11 image_url
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

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	masterpieceRepo := repository.NewMasterpieceRepository(db.GetDB())
	provenanceRepo := repository.NewProvenanceRepository(db.GetDB())
	auctionRepo := repository.NewAuctionRepository(db.GetDB())
	rarityService := service.NewRarityService(masterpieceRepo, provenanceRepo, auctionRepo)
	// No hub; nothing is listening during an import
	masterpieceService := service.NewMasterpieceService(masterpieceRepo, provenanceRepo, rarityService, &cfg.Policy, nil)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	pieces, err := readCatalogFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total masterpieces to import: %d\n", len(pieces))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for i := range pieces {
		if err := masterpieceService.Create(&pieces[i]); err != nil {
			fmt.Printf("Skipping %s: %v\n", pieces[i].SerialNumber, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total masterpieces imported: %d\n", imported)
}

func readCatalogFromXLSX(filePath string) ([]model.Masterpiece, error) {
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

	var pieces []model.Masterpiece
	seenSerials := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 8 {
			skippedCount++
			continue
		}

		serial := strings.TrimSpace(row[0])
		title := strings.TrimSpace(row[1])
		if serial == "" || title == "" || seenSerials[serial] {
			skippedCount++
			continue
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(row[7]), 64)
		if err != nil || price <= 0 {
			fmt.Printf("Row %d: invalid price %q, skipping\n", i+1, row[7])
			skippedCount++
			continue
		}

		piece := model.Masterpiece{
			SerialNumber: serial,
			Title:        title,
			Description:  strings.TrimSpace(row[2]),
			Category:     strings.ToLower(strings.TrimSpace(row[3])),
			Edition:      parseEdition(row[4]),
			Materials:    pq.StringArray(splitList(row[5])),
			Gemstones:    pq.StringArray(splitList(row[6])),
			Price:        price,
		}

		if len(row) > 8 {
			if pct, err := strconv.ParseFloat(strings.TrimSpace(row[8]), 64); err == nil && pct > 0 && pct <= 100 {
				piece.DepositPct = pct
			}
		}
		if len(row) > 9 {
			vip := strings.ToLower(strings.TrimSpace(row[9]))
			piece.VIPOnly = vip == "yes" || vip == "true" || vip == "y"
		}
		if len(row) > 10 {
			if year, err := strconv.Atoi(strings.TrimSpace(row[10])); err == nil {
				piece.YearCreated = year
			}
		}
		if len(row) > 11 {
			piece.ImageURL = strings.TrimSpace(row[11])
		}

		seenSerials[serial] = true
		pieces = append(pieces, piece)
	}

	if skippedCount > 0 {
		fmt.Printf("Skipped %d rows (missing fields, duplicates or bad data)\n", skippedCount)
	}

	return pieces, nil
}

func parseEdition(raw string) model.EditionType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "unique":
		return model.EditionUnique
	case "limited":
		return model.EditionLimited
	case "rare":
		return model.EditionRare
	default:
		return model.EditionStandard
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
