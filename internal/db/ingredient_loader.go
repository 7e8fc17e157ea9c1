package db

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedCatalogFormat = errors.New("unsupported catalog format, use .csv, .json or .xlsx")

// LoadIngredientsFile reads catalog ingredients from a CSV (name,unit rows),
// JSON ([{"name", "measurement_unit"}]) or XLSX (first sheet, name and unit
// in the first two columns) file. Blank rows are skipped and a header row
// whose first cell is "name" is ignored.
func LoadIngredientsFile(path string) ([]model.Ingredient, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readIngredientsCSV(f)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readIngredientsJSON(f)
	case ".xlsx":
		return readIngredientsXLSX(path)
	}
	return nil, ErrUnsupportedCatalogFormat
}

func ingredientFromRow(row []string, line int) (*model.Ingredient, error) {
	if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
		return nil, nil
	}
	if len(row) < 2 {
		return nil, fmt.Errorf("row %d: expected name and measurement unit", line)
	}
	name := strings.TrimSpace(row[0])
	unit := strings.TrimSpace(row[1])
	if line == 1 && strings.EqualFold(name, "name") {
		return nil, nil
	}
	if name == "" || unit == "" {
		return nil, fmt.Errorf("row %d: name and measurement unit must not be empty", line)
	}
	return &model.Ingredient{Name: name, MeasurementUnit: unit}, nil
}

func collectRows(rows [][]string) ([]model.Ingredient, error) {
	ingredients := make([]model.Ingredient, 0, len(rows))
	for i, row := range rows {
		ingredient, err := ingredientFromRow(row, i+1)
		if err != nil {
			return nil, err
		}
		if ingredient != nil {
			ingredients = append(ingredients, *ingredient)
		}
	}
	return ingredients, nil
}

func readIngredientsCSV(r io.Reader) ([]model.Ingredient, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return collectRows(rows)
}

func readIngredientsJSON(r io.Reader) ([]model.Ingredient, error) {
	var items []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.Name, item.MeasurementUnit})
	}
	return collectRows(rows)
}

func readIngredientsXLSX(path string) ([]model.Ingredient, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return collectRows(rows)
}
