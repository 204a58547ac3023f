package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/nodestore/internal/models"
)

const dateLayout = "2006-01-02"

var colourPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

var errNotAString = errors.New("expected a string")

func coerce(f *models.NodeTypeField, v any) (any, error) {
	if v == nil {
		if f.Required {
			return nil, errors.New("value is required")
		}
		return nil, nil
	}

	switch f.Type {
	case models.FieldString, models.FieldText, models.FieldMarkdown, models.FieldRichText:
		return coerceText(f, v)
	case models.FieldEmail:
		s, err := coerceText(f, v)
		if err != nil {
			return nil, err
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return nil, fmt.Errorf("invalid email %q", s)
		}
		return s, nil
	case models.FieldColour:
		s, ok := v.(string)
		if !ok || !colourPattern.MatchString(s) {
			return nil, fmt.Errorf("invalid colour %v", v)
		}
		return strings.ToLower(s), nil
	case models.FieldCountry:
		s, ok := v.(string)
		if !ok {
			return nil, errNotAString
		}
		region, err := language.ParseRegion(s)
		if err != nil || !region.IsCountry() {
			return nil, fmt.Errorf("invalid country code %q", s)
		}
		return region.String(), nil
	case models.FieldBoolean:
		return coerceBool(v)
	case models.FieldInteger:
		return coerceInt(v)
	case models.FieldDecimal:
		return coerceFloat(v)
	case models.FieldDate:
		return coerceTime(v, dateLayout)
	case models.FieldDateTime:
		return coerceTime(v, time.RFC3339)
	case models.FieldEnum, models.FieldRadioGroup:
		s, ok := v.(string)
		if !ok {
			return nil, errNotAString
		}
		return s, checkChoice(f, s)
	case models.FieldMultiple, models.FieldCheckGroup:
		list, err := coerceStrings(v)
		if err != nil {
			return nil, err
		}
		for _, s := range list {
			if err := checkChoice(f, s); err != nil {
				return nil, err
			}
		}
		return list, nil
	case models.FieldYAML:
		s, ok := v.(string)
		if !ok {
			return nil, errNotAString
		}
		var probe any
		if err := yaml.Unmarshal([]byte(s), &probe); err != nil {
			return nil, fmt.Errorf("invalid yaml: %v", err)
		}
		return s, nil
	case models.FieldGeoTag:
		return coerceGeoTag(v)
	case models.FieldJSON, models.FieldCollection:
		if _, err := json.Marshal(v); err != nil {
			return nil, fmt.Errorf("not serializable: %v", err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported type %s", f.Type)
}

func coerceText(f *models.NodeTypeField, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errNotAString
	}
	n := utf8.RuneCountInString(s)
	if f.MinLength > 0 && n < f.MinLength {
		return "", fmt.Errorf("shorter than %d characters", f.MinLength)
	}
	if f.MaxLength > 0 && n > f.MaxLength {
		return "", fmt.Errorf("longer than %d characters", f.MaxLength)
	}
	return s, nil
}

func checkChoice(f *models.NodeTypeField, s string) error {
	if len(f.DefaultValues) == 0 || slices.Contains(f.DefaultValues, s) {
		return nil
	}
	return fmt.Errorf("%q is not one of %s", s, strings.Join(f.DefaultValues, ", "))
}

func coerceBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("invalid boolean %q", b)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("invalid boolean %v", v)
}

func coerceInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		return strconv.ParseInt(n.String(), 10, 64)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", n)
		}
		return parsed, nil
	}
	return 0, fmt.Errorf("invalid integer %v", v)
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid decimal %q", n)
		}
		return parsed, nil
	}
	return 0, fmt.Errorf("invalid decimal %v", v)
}

func coerceTime(v any, layout string) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if layout == dateLayout {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
		return t.UTC(), nil
	case string:
		parsed, err := time.Parse(layout, t)
		if err != nil && layout == dateLayout {
			// datetime strings are accepted for dates and truncated
			if full, ferr := time.Parse(time.RFC3339, t); ferr == nil {
				return coerceTime(full, layout)
			}
		}
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q", t)
		}
		return parsed.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %v", v)
}

func coerceStrings(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, errNotAString
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{list}, nil
	}
	return nil, fmt.Errorf("expected a list of strings, got %T", v)
}

// GeoTag is a point value.
type GeoTag struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func coerceGeoTag(v any) (GeoTag, error) {
	switch g := v.(type) {
	case GeoTag:
		return g, validGeoTag(g)
	case map[string]any:
		lat, err := coerceFloat(g["lat"])
		if err != nil {
			return GeoTag{}, fmt.Errorf("geotag lat: %v", err)
		}
		lng, err := coerceFloat(g["lng"])
		if err != nil {
			return GeoTag{}, fmt.Errorf("geotag lng: %v", err)
		}
		tag := GeoTag{Lat: lat, Lng: lng}
		return tag, validGeoTag(tag)
	}
	return GeoTag{}, fmt.Errorf("invalid geotag %v", v)
}

func validGeoTag(g GeoTag) error {
	if g.Lat < -90 || g.Lat > 90 || g.Lng < -180 || g.Lng > 180 {
		return fmt.Errorf("geotag %v out of range", g)
	}
	return nil
}
