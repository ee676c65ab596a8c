// Package catalog manages vehicles, their cosmetic sets and their persistence.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
)

// Field length limits.
const (
	MaxNameLength    = 100
	MaxClassLength   = 50
	MaxSetNameLength = 100
	MaxPartLength    = 50
)

// Vehicle class labels. Stored values are the labels shown to players.
const (
	ClassSmall    = "소형"
	ClassCompact  = "준중형"
	ClassMidSize  = "중형"
	ClassFullSize = "대형"
	ClassSUV      = "SUV"
	ClassSports   = "스포츠"
	ClassSupercar = "슈퍼카"
	ClassLegend   = "레전드"
)

// Classes returns the allowed vehicle classes in display order.
func Classes() []string {
	return []string{
		ClassSmall,
		ClassCompact,
		ClassMidSize,
		ClassFullSize,
		ClassSUV,
		ClassSports,
		ClassSupercar,
		ClassLegend,
	}
}

// IsValidClass reports whether class is one of the fixed labels.
func IsValidClass(class string) bool {
	for _, c := range Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// ID is an opaque store-native record identifier. It serialises as
// {"$oid": "..."} to stay compatible with existing API consumers.
type ID string

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OID string `json:"$oid"`
	}{OID: string(id)})
}

func (id *ID) UnmarshalJSON(b []byte) error {
	var v struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(v.OID)
	return nil
}

// Vehicle is a car that cosmetic sets can be applied to.
type Vehicle struct {
	ID       ID     `json:"_id"`
	Name     string `json:"name"`
	Class    string `json:"class_name"`
	ImageURL string `json:"car_image_url,omitempty"`
}

// Validate checks required fields, lengths and the class enumeration.
// Name uniqueness is checked by the Service against the store.
func (v *Vehicle) Validate() error {
	var result *multierror.Error
	result = requireString(result, "name", v.Name, MaxNameLength)
	result = requireString(result, "class_name", v.Class, MaxClassLength)
	if v.Class != "" && !IsValidClass(v.Class) {
		result = multierror.Append(result, &FieldError{
			Field:   "class_name",
			Message: "must be one of: " + strings.Join(Classes(), ", "),
		})
	}
	return newValidationError(result)
}

// CosmeticSet is a named group of cosmetic parts for one vehicle.
type CosmeticSet struct {
	ID            ID       `json:"_id"`
	SetName       string   `json:"set_name"`
	VehicleID     ID       `json:"car"`
	SetEffects    string   `json:"set_effects,omitempty"`
	Parts         []string `json:"parts"`
	ImageURLFront string   `json:"image_url_front,omitempty"`
	ImageURLSide  string   `json:"image_url_side,omitempty"`
	ImageURLRear  string   `json:"image_url_rear,omitempty"`
}

// Validate checks required fields and lengths. Whether VehicleID resolves is
// checked by the Service.
func (c *CosmeticSet) Validate() error {
	var result *multierror.Error
	result = requireString(result, "set_name", c.SetName, MaxSetNameLength)
	if c.VehicleID == "" {
		result = multierror.Append(result, &FieldError{Field: "car", Message: "is required"})
	}
	for i, p := range c.Parts {
		if utf8.RuneCountInString(p) > MaxPartLength {
			result = multierror.Append(result, &FieldError{
				Field:   "parts",
				Message: fmt.Sprintf("part %d exceeds %d characters", i+1, MaxPartLength),
			})
		}
	}
	return newValidationError(result)
}

func requireString(result *multierror.Error, field, value string, max int) *multierror.Error {
	switch {
	case value == "":
		return multierror.Append(result, &FieldError{Field: field, Message: "is required"})
	case utf8.RuneCountInString(value) > max:
		return multierror.Append(result, &FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters", max),
		})
	}
	return result
}
