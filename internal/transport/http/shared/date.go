package shared

import "time"

// dateFormats are tried in order; API clients send either full timestamps or
// plain dates depending on the field.
var dateFormats = []string{time.RFC3339, "2006-01-02"}

// ParseDate accepts RFC3339 or YYYY-MM-DD. An empty value parses to the zero
// time with no error so callers can treat the parameter as optional.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	var err error
	for _, format := range dateFormats {
		var parsed time.Time
		if parsed, err = time.Parse(format, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, err
}
