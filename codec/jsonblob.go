package codec

import (
	"fmt"

	json "github.com/goccy/go-json"

	yamlbean "github.com/yamlbean/yamlbean"
)

// JSONBlob returns a Converter for JSON documents embedded in YAML scalars:
// the property holds a map[string]any, the document holds its JSON text.
func JSONBlob() yamlbean.Converter {
	return jsonBlobConverter{}
}

type jsonBlobConverter struct{}

func (jsonBlobConverter) ConvertToModel(value string) (any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, fmt.Errorf("invalid embedded JSON: %w", err)
	}
	return out, nil
}

func (jsonBlobConverter) ConvertToYaml(model any) (string, error) {
	b, err := json.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("cannot render embedded JSON: %w", err)
	}
	return string(b), nil
}
