// internal/rules/coerce.go
package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/reachwell/reachwell/internal/types"
)

/*
 * Value coercion for parameter binding.
 *
 * Rule values arrive as strings (form DSL) or as decoded JSON scalars.
 * Before a value is bound as a query parameter it is coerced to the kind
 * of its field, so the database compares numbers to numbers and dates to
 * dates regardless of what the client typed.
 *
 * Kind modes:
 *   - numeric: strict - coerce strings to float64, reject booleans
 *   - date: strict - RFC3339 or YYYY-MM-DD strings, time.Time passthrough
 *   - text: lenient - auto-coerce all scalar types to string
 *
 * Coercion failure is a hard compile error: a rule that compares
 * totalSpend against "abc" would otherwise fail only at execution time,
 * deep inside a campaign launch.
 */

// FieldKind classifies a field's comparison domain.
type FieldKind int

const (
	KindNumeric FieldKind = iota
	KindDate
	KindText
)

// fieldKinds classifies every allow-listed field.
var fieldKinds = map[types.Field]FieldKind{
	types.FieldTotalSpend:       KindNumeric,
	types.FieldTotalOrders:      KindNumeric,
	types.FieldVisits:           KindNumeric,
	types.FieldAge:              KindNumeric,
	types.FieldLastPurchase:     KindDate,
	types.FieldRegistrationDate: KindDate,
	types.FieldLocation:         KindText,
}

// coerceValue converts a rule value to its field's comparison kind.
func coerceValue(value any, kind FieldKind) (any, error) {
	switch kind {
	case KindNumeric:
		return coerceNumeric(value)
	case KindDate:
		return coerceDate(value)
	case KindText:
		return coerceText(value)
	default:
		return nil, types.ErrValueCoercion
	}
}

// coerceNumeric converts value to float64 for numeric comparison.
// Accepts float64, int, int64, and numeric strings. Rejects booleans.
// Whitespace-only strings are not valid numbers.
func coerceNumeric(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, types.ErrValueCoercion
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, types.ErrValueCoercion
		}
		return f, nil
	default:
		return nil, types.ErrValueCoercion
	}
}

// coerceDate converts value to time.Time for date comparison.
// Accepts time.Time, RFC3339 strings, and bare YYYY-MM-DD dates.
func coerceDate(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		v = strings.TrimSpace(v)
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t, nil
		}
		return nil, types.ErrValueCoercion
	default:
		return nil, types.ErrValueCoercion
	}
}

// coerceText converts all scalar types to their string representation.
// Lenient mode: text columns compare against whatever was typed.
func coerceText(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}
