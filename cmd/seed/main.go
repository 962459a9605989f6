package main

import (
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/platefeed/backend/config"
	"github.com/pageza/platefeed/backend/internal/database"
	"github.com/pageza/platefeed/backend/internal/models"
)

// Seeds the tag and ingredient catalog from CSV fixtures. Re-running is
// safe: existing rows are left untouched.
func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.csv", "CSV file with name,measurement_unit rows")
	tagsPath := flag.String("tags", "data/tags.csv", "CSV file with name,slug rows")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewGorm(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seedIngredients(db, *ingredientsPath); err != nil {
		log.Fatalf("Failed to seed ingredients: %v", err)
	}
	if err := seedTags(db, *tagsPath); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}
	log.Println("Catalog seeded")
}

func seedIngredients(db *gorm.DB, path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}

	ingredients := make([]models.Ingredient, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:            row[0],
			MeasurementUnit: row[1],
		})
	}
	if len(ingredients) == 0 {
		return nil
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(ingredients, 500)
	if result.Error != nil {
		return result.Error
	}
	log.Printf("Seeded %d ingredients (%d new)", len(ingredients), result.RowsAffected)
	return nil
}

func seedTags(db *gorm.DB, path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}

	tags := make([]models.Tag, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		tags = append(tags, models.Tag{
			Name: row[0],
			Slug: row[1],
		})
	}
	if len(tags) == 0 {
		return nil
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(tags)
	if result.Error != nil {
		return result.Error
	}
	log.Printf("Seeded %d tags (%d new)", len(tags), result.RowsAffected)
	return nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
