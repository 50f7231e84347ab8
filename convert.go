package yamlbean

// Converter transforms between the raw textual form of a scalar node and a
// domain value, bidirectionally. It differs from a CustomConstructor in that
// it never sees the node itself, only its text; the pipeline therefore never
// pre-coerces the raw value for a converted property.
//
// Round-trip expectation: ConvertToModel(ConvertToYaml(x)) == x for every
// value x the converter documents as supported.
type Converter interface {
	// ConvertToModel parses the raw document text into a domain value.
	ConvertToModel(value string) (any, error)
	// ConvertToYaml renders a domain value into the text to emit.
	ConvertToYaml(model any) (string, error)
}
