package codec

import (
	"fmt"
	"time"

	yamlbean "github.com/yamlbean/yamlbean"
)

// TimeRFC3339 returns a Converter between RFC3339 strings and time.Time.
// Emission is canonical: UTC, RFC3339Nano with trailing zeros trimmed.
func TimeRFC3339() yamlbean.Converter {
	return rfc3339Converter{}
}

type rfc3339Converter struct{}

func (rfc3339Converter) ConvertToModel(value string) (any, error) {
	t, err := parseRFC3339(value)
	if err != nil {
		return nil, fmt.Errorf("invalid RFC3339 time %q: %w", value, err)
	}
	return t, nil
}

func (rfc3339Converter) ConvertToYaml(model any) (string, error) {
	t, ok := model.(time.Time)
	if !ok {
		return "", fmt.Errorf("rfc3339 converter expects time.Time, got %T", model)
	}
	return formatRFC3339Canonical(t), nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
