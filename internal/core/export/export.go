package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"recipe-browser/internal/core/recipe"

	"github.com/xuri/excelize/v2"
)

// SheetName 匯出工作表名稱
const SheetName = "Recettes"

// Header 匯出欄位
var Header = []string{"id", "nom", "temps (min)", "personnes", "appareil", "ustensiles", "ingrédients"}

func row(r recipe.Recipe) []string {
	return []string{
		strconv.Itoa(r.ID),
		r.Name,
		strconv.Itoa(r.Time),
		strconv.Itoa(r.Servings),
		r.Appliance,
		strings.Join(r.Ustensils, ", "),
		ingredientList(r.Ingredients),
	}
}

// ingredientList 「名稱 (數量 單位)」以分號串接
func ingredientList(ingredients []recipe.Ingredient) string {
	parts := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if q := ing.QuantityLabel(); q != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", ing.Ingredient, q))
		} else {
			parts = append(parts, ing.Ingredient)
		}
	}
	return strings.Join(parts, "; ")
}

// WriteXLSX 將食譜寫成單一工作表的 Excel 活頁簿
func WriteXLSX(w io.Writer, recipes []recipe.Recipe) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	if err := sw.SetRow("A1", toCells(Header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range recipes {
		cellAddr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := toCells(row(r))
		// 數值欄位保留為數字
		cells[0], cells[2], cells[3] = r.ID, r.Time, r.Servings
		if err := sw.SetRow(cellAddr, cells); err != nil {
			return fmt.Errorf("failed to write recipe %d: %w", r.ID, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteCSV 將食譜寫成 CSV
func WriteCSV(w io.Writer, recipes []recipe.Recipe) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range recipes {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write 依副檔名選擇格式
func Write(w io.Writer, path string, recipes []recipe.Recipe) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(w, recipes)
	case ".csv":
		return WriteCSV(w, recipes)
	default:
		return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
