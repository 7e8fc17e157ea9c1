package service

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	EmptyShoppingListText = "Список покупок пуст."
	shoppingListSheet     = "Список покупок"
)

// ShoppingListService aggregates the ingredients of every recipe in a user's cart.
type ShoppingListService interface {
	// Build sums amounts per (name, unit) in the database.
	Build(userID uint) ([]model.ShoppingListRow, error)
	// BuildInProcess folds the raw cart lines in memory. Totals match Build.
	BuildInProcess(userID uint) ([]model.ShoppingListRow, error)
	RenderText(rows []model.ShoppingListRow) string
	RenderXLSX(rows []model.ShoppingListRow) ([]byte, error)
}

type shoppingListService struct {
	cartRepo repository.CartRepository
}

func NewShoppingListService(cartRepo repository.CartRepository) ShoppingListService {
	return &shoppingListService{cartRepo: cartRepo}
}

// sortRows orders rows by name then unit in byte order, independent of database collation.
func sortRows(rows []model.ShoppingListRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].MeasurementUnit < rows[j].MeasurementUnit
	})
}

func (s *shoppingListService) Build(userID uint) ([]model.ShoppingListRow, error) {
	rows, err := s.cartRepo.AggregateIngredients(userID)
	if err != nil {
		return nil, err
	}
	sortRows(rows)

	logger.Info("Shopping list built", map[string]interface{}{
		"user_id": userID,
		"rows":    len(rows),
	})
	return rows, nil
}

func (s *shoppingListService) BuildInProcess(userID uint) ([]model.ShoppingListRow, error) {
	lines, err := s.cartRepo.IngredientLines(userID)
	if err != nil {
		return nil, err
	}

	type key struct{ name, unit string }
	totals := make(map[key]int64)
	for _, line := range lines {
		totals[key{line.Name, line.MeasurementUnit}] += line.Total
	}

	rows := make([]model.ShoppingListRow, 0, len(totals))
	for k, total := range totals {
		rows = append(rows, model.ShoppingListRow{Name: k.name, MeasurementUnit: k.unit, Total: total})
	}
	sortRows(rows)
	return rows, nil
}

func (s *shoppingListService) RenderText(rows []model.ShoppingListRow) string {
	if len(rows) == 0 {
		return EmptyShoppingListText
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s (%s) — %d", row.Name, row.MeasurementUnit, row.Total))
	}
	return strings.Join(lines, "\n")
}

func (s *shoppingListService) RenderXLSX(rows []model.ShoppingListRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), shoppingListSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"Ингредиент", "Единица", "Количество"}
	if err := f.SetSheetRow(shoppingListSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{row.Name, row.MeasurementUnit, row.Total}
		if err := f.SetSheetRow(shoppingListSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(shoppingListSheet, "A", "A", 40); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to render shopping list spreadsheet", err)
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
