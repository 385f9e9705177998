// Package model defines the knowledge-graph data model: values, properties,
// entities, relations, spaces, edits, proposals, cursors and versions.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geo-kg/indexer/kgerr"
)

// DataType is the closed set of property data types a Value can carry.
// This adopts the Text/Number/Checkbox/URL/Time/Point/Relation enumeration;
// writes outside this set are rejected.
type DataType string

const (
	DataTypeText     DataType = "Text"
	DataTypeNumber   DataType = "Number"
	DataTypeCheckbox DataType = "Checkbox"
	DataTypeURL      DataType = "URL"
	DataTypeTime     DataType = "Time"
	DataTypePoint    DataType = "Point"
	DataTypeRelation DataType = "Relation"
)

// ValidDataType reports whether dt is one of the closed set of data types.
func ValidDataType(dt DataType) bool {
	switch dt {
	case DataTypeText, DataTypeNumber, DataTypeCheckbox, DataTypeURL, DataTypeTime, DataTypeRelation, DataTypePoint:
		return true
	default:
		return false
	}
}

// ValueOptions carries formatting metadata that rides along with a Value
// verbatim; it never affects equality comparisons on the raw value.
type ValueOptions struct {
	Format   string
	Unit     string
	Language string
}

// Value is a property's raw string encoding plus optional formatting
// metadata. The value's kind is implied by the owning property's DataType,
// not stored redundantly on the Value itself.
type Value struct {
	PropertyID uuid.UUID
	Raw        string
	Options    ValueOptions
}

// ValidateAgainst reports an InvalidValue error if v's raw encoding cannot
// be interpreted as dt, and a SchemaMismatch error if dt is not a known
// data type.
func ValidateAgainst(v Value, dt DataType) error {
	switch dt {
	case DataTypeTime:
		if _, err := time.Parse(time.RFC3339, v.Raw); err != nil {
			return kgerr.InvalidValueErr("value %q is not a valid RFC3339 time: %v", v.Raw, err)
		}
	case DataTypeNumber:
		if _, ok := new(decimalString).parse(v.Raw); !ok {
			return kgerr.InvalidValueErr("value %q is not a valid decimal number", v.Raw)
		}
	case DataTypeCheckbox:
		lower := strings.ToLower(v.Raw)
		if lower != "true" && lower != "false" {
			return kgerr.InvalidValueErr("value %q is not a valid checkbox (true/false)", v.Raw)
		}
	case DataTypePoint:
		if _, _, err := ParsePoint(v.Raw); err != nil {
			return kgerr.InvalidValueErr("value %q is not a valid point: %v", v.Raw, err)
		}
	case DataTypeRelation:
		if _, err := uuid.Parse(v.Raw); err != nil {
			return kgerr.InvalidValueErr("relation value %q is not a valid UUID", v.Raw)
		}
	case DataTypeText, DataTypeURL:
		// Any string is a valid Text or URL encoding.
	default:
		return kgerr.SchemaMismatchErr("unknown data type %q", dt)
	}
	return nil
}

// decimalString is a marker type for the arbitrary-precision decimal
// comparison contract: numbers are kept as strings and only validated for
// shape, never parsed into a fixed-width float.
type decimalString struct{}

func (decimalString) parse(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return "", false
	}
	seenDigit, seenDot := false, false
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			seenDigit = true
		case s[i] == '.' && !seenDot:
			seenDot = true
		default:
			return "", false
		}
	}
	if !seenDigit {
		return "", false
	}
	return s, true
}

// ParseCheckbox interprets a case-insensitive "true"/"false" string.
func ParseCheckbox(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, kgerr.InvalidValueErr("value %q is not a valid checkbox", raw)
	}
}

// FormatCheckbox renders a bool back to the canonical "true"/"false" string.
func FormatCheckbox(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ParsePoint interprets a "lat,lon" string with finite float32 components.
func ParsePoint(raw string) (lat, lon float32, err error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"lat,lon\", got %q", raw)
	}
	latVal, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}
	lonVal, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}
	if isInf32(float32(latVal)) || isInf32(float32(lonVal)) || latVal != latVal || lonVal != lonVal {
		return 0, 0, fmt.Errorf("point components must be finite")
	}
	return float32(latVal), float32(lonVal), nil
}

func isInf32(f float32) bool {
	return f > maxFloat32 || f < -maxFloat32
}

const maxFloat32 = 3.4028235e+38

// FormatPoint renders lat/lon back to the canonical "lat,lon" string.
func FormatPoint(lat, lon float32) string {
	return strconv.FormatFloat(float64(lat), 'g', -1, 32) + "," + strconv.FormatFloat(float64(lon), 'g', -1, 32)
}
