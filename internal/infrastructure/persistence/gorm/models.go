// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FoodModel represents the GORM model for one catalog food
type FoodModel struct {
	ID        uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Name      string      `gorm:"type:varchar(255);not null;index"`
	Category  string      `gorm:"type:varchar(50);not null;index:idx_foods_category_position"`
	Position  int         `gorm:"not null;index:idx_foods_category_position"`
	Info      StringMap   `gorm:"type:json"`
	Tags      StringSlice `gorm:"type:json"`
	CreatedAt time.Time
}

// CuisineModel holds the cooking methods and flavors of one cuisine
type CuisineModel struct {
	Cuisine   string      `gorm:"type:varchar(50);primaryKey"`
	Methods   StringSlice `gorm:"type:json"`
	Flavors   StringSlice `gorm:"type:json"`
	UpdatedAt time.Time
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// StringMap custom type for the nutrient info of a food
type StringMap map[string]string

// Scan implements the sql.Scanner interface
func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into StringMap", value)
	}
}

// Value implements the driver.Valuer interface
func (m StringMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BeforeCreate hook for FoodModel
func (f *FoodModel) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (FoodModel) TableName() string {
	return "foods"
}

func (CuisineModel) TableName() string {
	return "cuisines"
}

// AllModels lists every model for migrations
func AllModels() []interface{} {
	return []interface{}{&FoodModel{}, &CuisineModel{}}
}
