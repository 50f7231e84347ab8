// Package codec ships ready-made converters. Each converter is registered
// under a well-known name at init time so yamlbean "converter=" tags can
// reference it; importing the package for side effects is enough:
//
//	import _ "github.com/yamlbean/yamlbean/codec"
package codec

import (
	"fmt"

	yamlbean "github.com/yamlbean/yamlbean"
)

func init() {
	yamlbean.RegisterConverter("identity", Identity())
	yamlbean.RegisterConverter("rfc3339", TimeRFC3339())
	yamlbean.RegisterConverter("jsonblob", JSONBlob())
}

// Identity returns a Converter that passes scalar text through unchanged.
// Useful for pinning a property to its raw textual form regardless of what
// the engine would coerce it to.
func Identity() yamlbean.Converter {
	return identityConverter{}
}

type identityConverter struct{}

func (identityConverter) ConvertToModel(value string) (any, error) {
	return value, nil
}

func (identityConverter) ConvertToYaml(model any) (string, error) {
	if model == nil {
		return "", nil
	}
	if s, ok := model.(string); ok {
		return s, nil
	}
	return fmt.Sprint(model), nil
}
