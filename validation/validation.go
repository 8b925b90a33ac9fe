package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// MaxLen flags values longer than max runes.
func MaxLen(field, value string, max int, v Violations) {
	if len([]rune(value)) > max {
		v[field] = "too_long"
	}
}

// Email checks the minimal local@domain shape; full RFC validation is not attempted.
func Email(field, value string, v Violations) {
	s := strings.TrimSpace(value)
	at := strings.Index(s, "@")
	if at < 1 || at == len(s)-1 || !strings.Contains(s[at+1:], ".") || strings.ContainsAny(s, " \t") {
		v[field] = "invalid_email"
	}
}

// OneOf flags values outside the allowed enum.
func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_choice"
}

// IntRange flags integers outside [minVal, maxVal].
func IntRange(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// NonNegativeFloat flags negative amounts (prices may be zero).
func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

// MaxFloat flags amounts above the storable maximum of the column.
func MaxFloat(field string, val, maxVal float64, v Violations) {
	if val > maxVal {
		v[field] = "too_large"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}
