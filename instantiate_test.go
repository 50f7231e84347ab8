package yamlbean_test

import (
	"context"
	"reflect"
	"testing"

	yamlbean "github.com/yamlbean/yamlbean"
	"gopkg.in/yaml.v3"
)

type widget struct {
	Origin string
	Label  string
}

// originInstantiator stamps Origin so tests can tell which strategy ran.
type originInstantiator struct {
	origin   string
	calls    int
	passNext bool
}

func (in *originInstantiator) CreateInstance(ctx context.Context, typ reflect.Type, node *yaml.Node, def yamlbean.InstantiatorFunc) (any, error) {
	in.calls++
	if in.passNext {
		return nil, nil
	}
	return &widget{Origin: in.origin}, nil
}

func TestInstantiator_TypeSpecificWinsOverGlobal(t *testing.T) {
	typed := &originInstantiator{origin: "typed"}
	global := &originInstantiator{origin: "global"}
	c := yamlbean.NewConstructor()
	c.RegisterInstantiator(reflect.TypeOf(widget{}), typed)
	c.SetGlobalInstantiator(global)

	var w widget
	if err := c.Unmarshal(context.Background(), []byte("label: a\n"), &w); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if w.Origin != "typed" || w.Label != "a" {
		t.Fatalf("unexpected widget: %+v", w)
	}
	if global.calls != 0 {
		t.Fatalf("global instantiator must not run when the typed one produced an instance")
	}
}

func TestInstantiator_NilDefersToGlobal(t *testing.T) {
	typed := &originInstantiator{passNext: true}
	global := &originInstantiator{origin: "global"}
	c := yamlbean.NewConstructor()
	c.RegisterInstantiator(reflect.TypeOf(widget{}), typed)
	c.SetGlobalInstantiator(global)

	var w widget
	if err := c.Unmarshal(context.Background(), []byte("label: a\n"), &w); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if typed.calls != 1 || w.Origin != "global" {
		t.Fatalf("expected fall-through to global, got %+v (typed calls %d)", w, typed.calls)
	}
}

func TestInstantiator_DefaultInstantiatorCancelsGlobal(t *testing.T) {
	global := &originInstantiator{origin: "global"}
	c := yamlbean.NewConstructor()
	c.SetGlobalInstantiator(global)
	c.RegisterInstantiator(reflect.TypeOf(widget{}), yamlbean.DefaultInstantiator{})

	var w widget
	if err := c.Unmarshal(context.Background(), []byte("label: a\n"), &w); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if w.Origin != "" {
		t.Fatalf("global should be cancelled for widget, got %+v", w)
	}
	if global.calls != 0 {
		t.Fatalf("global instantiator ran despite DefaultInstantiator registration")
	}
}

// nilPointerInstantiator returns a typed nil pointer, which must count as
// deferring to the next strategy, same as an untyped nil.
type nilPointerInstantiator struct{ calls int }

func (in *nilPointerInstantiator) CreateInstance(ctx context.Context, typ reflect.Type, node *yaml.Node, def yamlbean.InstantiatorFunc) (any, error) {
	in.calls++
	return (*widget)(nil), nil
}

func TestInstantiator_TypedNilPointerDefersToNextStrategy(t *testing.T) {
	typed := &nilPointerInstantiator{}
	global := &originInstantiator{origin: "global"}
	c := yamlbean.NewConstructor()
	c.RegisterInstantiator(reflect.TypeOf(widget{}), typed)
	c.SetGlobalInstantiator(global)

	var w widget
	if err := c.Unmarshal(context.Background(), []byte("label: a\n"), &w); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if typed.calls != 1 || w.Origin != "global" || w.Label != "a" {
		t.Fatalf("expected fall-through to global, got %+v (typed calls %d)", w, typed.calls)
	}
}

func TestInstantiator_TypedNilPointerFallsBackToDefault(t *testing.T) {
	c := yamlbean.NewConstructor()
	c.RegisterInstantiator(reflect.TypeOf(widget{}), &nilPointerInstantiator{})

	var w widget
	if err := c.Unmarshal(context.Background(), []byte("label: b\n"), &w); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if w.Origin != "" || w.Label != "b" {
		t.Fatalf("expected zero-value fallback, got %+v", w)
	}
}

func TestInstantiator_GlobalAppliesWithoutTypedRegistration(t *testing.T) {
	global := &originInstantiator{origin: "global"}
	c := yamlbean.NewConstructor()
	c.SetGlobalInstantiator(global)

	var w widget
	if err := c.Unmarshal(context.Background(), []byte("label: b\n"), &w); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if w.Origin != "global" || w.Label != "b" {
		t.Fatalf("unexpected widget: %+v", w)
	}
}
