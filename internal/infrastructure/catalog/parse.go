package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"gopkg.in/yaml.v3"
)

// rawFood is one row of a food table as exported by the nutrition database
type rawFood struct {
	Name string         `json:"name"`
	Type string         `json:"type"`
	Info map[string]any `json:"info"`
	Tags []string       `json:"tags"`
}

func (r rawFood) toItem() diet.FoodItem {
	category := diet.Category(r.Type)
	if category == "" {
		category = diet.CategoryOther
	}
	var info map[string]string
	if len(r.Info) > 0 {
		info = make(map[string]string, len(r.Info))
		for k, v := range r.Info {
			info[k] = fmt.Sprint(v)
		}
	}
	return diet.FoodItem{Name: r.Name, Category: category, Info: info, Tags: r.Tags}
}

// ParseResult reports what a raw food table yielded
type ParseResult struct {
	Items   []diet.FoodItem
	Skipped int
}

// ParseFoodTable reads a raw food table: either a JSON array of foods or one
// JSON object per line. Unparseable lines are skipped and counted.
func ParseFoodTable(r io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read food table: %w", err)
	}

	var rows []rawFood
	if err := json.Unmarshal(data, &rows); err == nil {
		return &ParseResult{Items: toItems(rows)}, nil
	}

	result := &ParseResult{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row rawFood
		if err := json.Unmarshal([]byte(line), &row); err != nil || row.Name == "" {
			result.Skipped++
			continue
		}
		result.Items = append(result.Items, row.toItem())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan food table: %w", err)
	}
	return result, nil
}

func toItems(rows []rawFood) []diet.FoodItem {
	items := make([]diet.FoodItem, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		items = append(items, row.toItem())
	}
	return items
}

// Partition groups items by category, preserving input order, and attaches
// the default cuisine tables.
func Partition(items []diet.FoodItem) *outbound.CatalogSnapshot {
	snapshot := &outbound.CatalogSnapshot{
		FoodByType:     make(map[diet.Category][]diet.FoodItem),
		CuisineMethods: DefaultCuisineMethods(),
		CuisineFlavors: DefaultCuisineFlavors(),
	}
	for _, item := range items {
		snapshot.FoodByType[item.Category] = append(snapshot.FoodByType[item.Category], item)
	}
	return snapshot
}

type helperData struct {
	FoodByType     map[string][]rawFood `json:"food_by_type"`
	CuisineMethods map[string][]string  `json:"cuisine_methods"`
	CuisineFlavors map[string][]string  `json:"cuisine_flavors"`
}

// ParseHelperData reads the preprocessed catalog: foods already grouped by
// type plus the cuisine method and flavor tables. Missing cuisine tables are
// filled with the defaults.
func ParseHelperData(r io.Reader) (*outbound.CatalogSnapshot, error) {
	var data helperData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode helper data: %w", err)
	}
	if data.FoodByType == nil {
		return nil, fmt.Errorf("decode helper data: missing food_by_type")
	}

	snapshot := &outbound.CatalogSnapshot{
		FoodByType:     make(map[diet.Category][]diet.FoodItem, len(data.FoodByType)),
		CuisineMethods: make(map[diet.Cuisine][]string, len(data.CuisineMethods)),
		CuisineFlavors: make(map[diet.Cuisine][]string, len(data.CuisineFlavors)),
	}
	for category, rows := range data.FoodByType {
		items := make([]diet.FoodItem, 0, len(rows))
		for _, row := range rows {
			item := row.toItem()
			item.Category = diet.Category(category)
			items = append(items, item)
		}
		snapshot.FoodByType[diet.Category(category)] = items
	}
	for cuisine, methods := range data.CuisineMethods {
		snapshot.CuisineMethods[diet.Cuisine(cuisine)] = methods
	}
	for cuisine, flavors := range data.CuisineFlavors {
		snapshot.CuisineFlavors[diet.Cuisine(cuisine)] = flavors
	}
	if len(snapshot.CuisineMethods) == 0 {
		snapshot.CuisineMethods = DefaultCuisineMethods()
	}
	if len(snapshot.CuisineFlavors) == 0 {
		snapshot.CuisineFlavors = DefaultCuisineFlavors()
	}
	return snapshot, nil
}

// ParseYAML reads a catalog snapshot written as YAML
func ParseYAML(r io.Reader) (*outbound.CatalogSnapshot, error) {
	var snapshot outbound.CatalogSnapshot
	if err := yaml.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode yaml catalog: %w", err)
	}
	for category, items := range snapshot.FoodByType {
		for i := range items {
			if items[i].Category == "" {
				items[i].Category = category
			}
		}
	}
	if len(snapshot.CuisineMethods) == 0 {
		snapshot.CuisineMethods = DefaultCuisineMethods()
	}
	if len(snapshot.CuisineFlavors) == 0 {
		snapshot.CuisineFlavors = DefaultCuisineFlavors()
	}
	return &snapshot, nil
}

// Parse detects the catalog format from its content: YAML when yamlHint is
// set, preprocessed helper data when the JSON carries food_by_type, a raw
// food table otherwise.
func Parse(data []byte, yamlHint bool) (*outbound.CatalogSnapshot, error) {
	if yamlHint {
		return ParseYAML(bytes.NewReader(data))
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err == nil {
		if _, ok := probe["food_by_type"]; ok {
			return ParseHelperData(bytes.NewReader(data))
		}
	}

	result, err := ParseFoodTable(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("food table contains no usable rows (%d skipped)", result.Skipped)
	}
	return Partition(result.Items), nil
}

// LoadFile reads and parses the catalog at path
func LoadFile(path string) (*outbound.CatalogSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return Parse(data, ext == ".yaml" || ext == ".yml")
}
