package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formstate/pkg/formset"
)

// ErrInvalidValue is returned when a change carries a value the field
// cannot hold.
var ErrInvalidValue = errors.New("dashboard: invalid value")

// ErrNoRecord is returned by Submit on a page without a loaded record.
var ErrNoRecord = errors.New("dashboard: no record loaded")

// SeoDescriptionLength caps the generated SEO description placeholder.
const SeoDescriptionLength = 300

var plainText = bluemonday.StrictPolicy()

// seoPlaceholder reduces rich text to plain text and truncates it to
// SeoDescriptionLength runes.
func seoPlaceholder(description string) string {
	text := html.UnescapeString(plainText.Sanitize(description))
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > SeoDescriptionLength {
		runes = runes[:SeoDescriptionLength]
	}
	return string(runes)
}

// toFloat rejects NaN and infinities, which have no JSON encoding.
func toFloat(value any) (float64, error) {
	f, err := parseFloat(value)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", f)
	}
	return f, nil
}

func parseFloat(value any) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, nil
		}
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, fmt.Errorf("%d is out of range", v)
		}
		return int(v), nil
	default:
		f, err := toFloat(value)
		if err != nil {
			return 0, err
		}
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("%v is not a whole number", f)
		}
		if f < math.MinInt32 || f > math.MaxInt32 {
			return 0, fmt.Errorf("%v is out of range", f)
		}
		return int(f), nil
	}
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		return false, fmt.Errorf("unsupported type %T", value)
	}
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("unsupported type %T", value)
	}
}

// coercer normalises a field value before it reaches the form so that
// HasChanged compares like with like.
type coercer func(any) (any, error)

func floatField(v any) (any, error)  { return toFloat(v) }
func intField(v any) (any, error)    { return toInt(v) }
func boolField(v any) (any, error)   { return toBool(v) }
func stringField(v any) (any, error) { return toString(v) }

func stringsField(v any) (any, error) {
	out, ok := formset.Strings(v)
	if !ok {
		return nil, fmt.Errorf("unsupported type %T", v)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func coerce(fields map[string]coercer, name string, value any) (any, error) {
	fn, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidValue, name)
	}
	out, err := fn(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
	}
	return out, nil
}

// Typed readers over form data. Values were coerced on the way in, so a
// mismatch only happens for fields the page never seeded.

func str(data map[string]any, key string) string {
	s, _ := toString(data[key])
	return s
}

func boolean(data map[string]any, key string) bool {
	b, _ := toBool(data[key])
	return b
}

func float(data map[string]any, key string) float64 {
	f, _ := toFloat(data[key])
	return f
}

func integer(data map[string]any, key string) int {
	i, _ := toInt(data[key])
	return i
}

func strs(data map[string]any, key string) []string {
	out, _ := formset.Strings(data[key])
	if out == nil {
		out = []string{}
	}
	return out
}

func ptr[T any](v T) *T { return &v }
