package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ManufacturerUnspecified is the sentinel the import pipeline writes when a
// product row carries no manufacturer. It is never shown in facet lists.
const ManufacturerUnspecified = "unspecified"

// Characteristic is one (name, value) pair of a product. Names may repeat
// across entries of the same product; entries keep their import order.
type Characteristic struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CharacteristicList is stored as a PostgreSQL JSONB array
type CharacteristicList []Characteristic

func (c CharacteristicList) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *CharacteristicList) Scan(value interface{}) error {
	if value == nil {
		*c = make(CharacteristicList, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// StringArray is stored as a PostgreSQL JSONB array of strings
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = make(StringArray, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Product represents a catalog product. Products are written wholesale by the
// import pipeline; this service only reads them.
// Performance indexes: category/subcategory/manufacturer carry btree indexes
// because every compiled query filters on some combination of them.
type Product struct {
	ID            string `json:"id" gorm:"primary_key"`
	Name          string `json:"name" gorm:"not null"`
	Description   string `json:"description"`
	CategoryID    string `json:"categoryId" gorm:"index:idx_products_category;index:idx_products_category_subcategory"`
	SubcategoryID string `json:"subcategoryId,omitempty" gorm:"index:idx_products_category_subcategory"`
	Manufacturer  string `json:"manufacturer" gorm:"index"`

	Characteristics CharacteristicList `json:"characteristics" gorm:"type:jsonb"`
	Images          StringArray        `json:"images" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_products_created_id,priority:1"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
