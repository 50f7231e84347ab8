package codec

import (
	"reflect"
	"testing"
)

func TestJSONBlob_RoundTrip(t *testing.T) {
	c := JSONBlob()
	got, err := c.ConvertToModel(`{"a":1,"b":["x","y"]}`)
	if err != nil {
		t.Fatalf("to model err: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if !reflect.DeepEqual(m["b"], []any{"x", "y"}) {
		t.Fatalf("unexpected value: %v", m)
	}

	txt, err := c.ConvertToYaml(m)
	if err != nil {
		t.Fatalf("to yaml err: %v", err)
	}
	back, err := c.ConvertToModel(txt)
	if err != nil {
		t.Fatalf("re-parse err: %v", err)
	}
	if !reflect.DeepEqual(back, got) {
		t.Fatalf("roundtrip mismatch: %v != %v", back, got)
	}
}

func TestJSONBlob_Invalid(t *testing.T) {
	c := JSONBlob()
	if _, err := c.ConvertToModel("{broken"); err == nil {
		t.Fatalf("expected JSON error")
	}
}
