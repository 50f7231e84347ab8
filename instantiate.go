package yamlbean

import (
	"context"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// InstantiatorFunc is the signature of the default instantiation routine
// handed to custom instantiators so they can delegate.
type InstantiatorFunc func(ctx context.Context, typ reflect.Type, node *yaml.Node) (any, error)

// Instantiator produces an initial object instance for a type, in place of
// the default zero-value approach. Returning (nil, nil) defers to the next
// strategy in the chain; returning an error aborts construction.
type Instantiator interface {
	CreateInstance(ctx context.Context, typ reflect.Type, node *yaml.Node, defaultInstantiator InstantiatorFunc) (any, error)
}

// DefaultInstantiator always delegates to the default routine. Registering it
// for a type cancels out a global instantiator for that type only.
type DefaultInstantiator struct{}

func (DefaultInstantiator) CreateInstance(ctx context.Context, typ reflect.Type, node *yaml.Node, def InstantiatorFunc) (any, error) {
	return def(ctx, typ, node)
}

// newInstance obtains an addressable value of typ by running the
// instantiation chain: type-specific instantiator, then the global
// instantiator, then the default zero-value strategy. A nil result from a
// custom instantiator means "next strategy".
func (c *Constructor) newInstance(ctx context.Context, path string, typ reflect.Type, node *yaml.Node) (reflect.Value, error) {
	def := func(ctx context.Context, t reflect.Type, n *yaml.Node) (any, error) {
		return reflect.New(t).Interface(), nil
	}

	var instance any
	if in := c.lookupInstantiator(typ); in != nil {
		v, err := in.CreateInstance(ctx, typ, node, def)
		if err != nil {
			return reflect.Value{}, err
		}
		instance = v
	}
	if isNilInstance(instance) && c.globalInstantiator != nil {
		v, err := c.globalInstantiator.CreateInstance(ctx, typ, node, def)
		if err != nil {
			return reflect.Value{}, err
		}
		instance = v
	}
	if isNilInstance(instance) {
		return reflect.New(typ).Elem(), nil
	}
	return asAddressable(instance, typ, node, path)
}

// isNilInstance reports whether an instantiator result is the defer signal:
// either an untyped nil or a nil pointer/interface wrapped in any.
func isNilInstance(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// asAddressable normalizes an instantiator result to an addressable value of
// typ, accepting either T or *T.
func asAddressable(instance any, typ reflect.Type, node *yaml.Node, path string) (reflect.Value, error) {
	rv := reflect.ValueOf(instance)
	if rv.Kind() == reflect.Pointer && rv.Type().Elem() == typ {
		return rv.Elem(), nil
	}
	if rv.Type() == typ {
		// copy into an addressable slot so field assignment works
		out := reflect.New(typ).Elem()
		out.Set(rv)
		return out, nil
	}
	if rv.Type().AssignableTo(typ) {
		out := reflect.New(typ).Elem()
		out.Set(rv.Convert(typ))
		return out, nil
	}
	return reflect.Value{}, issueAt(node, path, CodeConstructFailed,
		fmt.Sprintf("instantiator produced %T, want %s", instance, typ), nil)
}
