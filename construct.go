package yamlbean

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConstructFunc is the default construction routine handed to custom
// constructors so they can delegate for all or part of a node.
type ConstructFunc func(node *yaml.Node) (any, error)

// CustomConstructor builds a value from a raw node in place of default
// field assignment. Domain errors it returns are propagated unchanged.
type CustomConstructor interface {
	Construct(ctx context.Context, node *yaml.Node, defaultConstruct ConstructFunc) (any, error)
}

// decodeState is the transient per-document construction context. The
// node→property association is identity-keyed (map on node pointers) because
// it must survive entry-list mutation and is consulted again when a singleton
// value is wrapped into a collection.
type decodeState struct {
	nodeProp map[*yaml.Node]*property
}

// construct builds a value of the declared type from node. The resolved type
// is carried explicitly through the call chain rather than written back into
// shared node state, so retype/restore cannot leak across siblings.
func (c *Constructor) construct(ctx context.Context, st *decodeState, path string, node *yaml.Node, typ reflect.Type) (reflect.Value, error) {
	for node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if isNull(node) {
		return reflect.Zero(typ), nil
	}
	if typ.Kind() == reflect.Pointer {
		v, err := c.construct(ctx, st, path, node, typ.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(typ.Elem())
		p.Elem().Set(v)
		return p, nil
	}
	// A single scalar/mapping against a collection property becomes a
	// one-element sequence.
	if typ.Kind() == reflect.Slice && node.Kind != yaml.SequenceNode {
		return c.constructAsList(ctx, st, path, node, typ)
	}
	if cc := c.lookupConstructBy(typ); cc != nil {
		def := func(n *yaml.Node) (any, error) {
			v, err := c.constructDefault(ctx, st, path, n, typ)
			if err != nil {
				return nil, err
			}
			return valueInterface(v), nil
		}
		out, err := cc.Construct(ctx, node, def)
		if err != nil {
			return reflect.Value{}, err
		}
		return coerceTo(out, typ, node, path)
	}
	return c.constructDefault(ctx, st, path, node, typ)
}

// constructDefault is the base construction algorithm: recursive descent for
// mappings and sequences, engine-level decoding for leaves. Custom
// constructors delegate here.
func (c *Constructor) constructDefault(ctx context.Context, st *decodeState, path string, node *yaml.Node, typ reflect.Type) (reflect.Value, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		if typ.Kind() == reflect.Slice {
			out := reflect.MakeSlice(typ, 0, len(node.Content))
			for i, en := range node.Content {
				ev, err := c.construct(ctx, st, path+"/"+strconv.Itoa(i), en, typ.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				av, err := coerceValue(ev, typ.Elem(), en, path)
				if err != nil {
					return reflect.Value{}, err
				}
				out = reflect.Append(out, av)
			}
			return out, nil
		}
		return c.decodeLeaf(node, typ, path)
	case yaml.MappingNode:
		if typ.Kind() == reflect.Map {
			return c.constructMap(ctx, st, path, node, typ)
		}
		resolved := c.selectType(typ, node)
		rt := resolved
		ptr := false
		if rt.Kind() == reflect.Pointer {
			ptr = true
			rt = rt.Elem()
		}
		if rt.Kind() == reflect.Struct {
			v, err := c.constructMapping(ctx, st, path, node, rt)
			if err != nil {
				return reflect.Value{}, err
			}
			if ptr {
				pv := reflect.New(rt)
				pv.Elem().Set(v)
				return pv, nil
			}
			return v, nil
		}
		return c.decodeLeaf(node, typ, path)
	default:
		return c.decodeLeaf(node, typ, path)
	}
}

// constructMapping builds a struct of type typ from a mapping node:
// instantiation chain, then the per-property override pass, then default
// assignment for the untouched entries.
func (c *Constructor) constructMapping(ctx context.Context, st *decodeState, path string, node *yaml.Node, typ reflect.Type) (reflect.Value, error) {
	bi, err := c.introspect(typ)
	if err != nil {
		return reflect.Value{}, issueAt(node, path, CodeInvalidType, err.Error(), err)
	}
	instance, err := c.newInstance(ctx, path, typ, node)
	if err != nil {
		return reflect.Value{}, err
	}

	// First pass: resolve every entry to a property, record the value-node
	// association, and run constructor-by / converter / ignore overrides.
	// Handled entries are removed before default assignment runs.
	handled := make(map[*yaml.Node]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return reflect.Value{}, issueAt(keyNode, path, CodeKeyNotScalar,
				"mapping keys must be scalars", nil)
		}
		key := keyNode.Value
		ppath := path + "/" + key
		p := c.resolveProperty(bi, key)
		if p == nil {
			return reflect.Value{}, issueAt(keyNode, ppath, CodeUnknownKey,
				fmt.Sprintf("no property %q in type %s", key, typ), nil)
		}
		st.nodeProp[valNode] = p

		switch {
		case p.constructBy != "":
			cc := constructorDescriptors[p.constructBy]
			if cc == nil {
				return reflect.Value{}, issueAt(valNode, ppath, CodeStrategyInit,
					fmt.Sprintf("custom constructor %q on property %s.%s is not registered", p.constructBy, typ, key), nil)
			}
			// Delegation goes through construct, not constructDefault: the
			// property's collection wrapping and the value type's own
			// overrides still apply when the custom constructor defers.
			// Property-level dispatch happens only here, so this cannot
			// re-enter the same constructor.
			def := func(n *yaml.Node) (any, error) {
				v, derr := c.construct(ctx, st, ppath, n, p.typ)
				if derr != nil {
					return nil, derr
				}
				return valueInterface(v), nil
			}
			val, cerr := cc.Construct(ctx, valNode, def)
			if cerr != nil {
				return reflect.Value{}, cerr
			}
			if serr := c.setField(instance, p, val, valNode, ppath); serr != nil {
				return reflect.Value{}, serr
			}
			handled[keyNode] = true
		case p.converter != "":
			conv := converterDescriptors[p.converter]
			if conv == nil {
				return reflect.Value{}, issueAt(valNode, ppath, CodeStrategyInit,
					fmt.Sprintf("converter %q on property %s.%s is not registered", p.converter, typ, key), nil)
			}
			val, cerr := c.applyConverter(conv, valNode, ppath)
			if cerr != nil {
				if p.ignoreErrs {
					c.logger.Debugf("ignoring: could not convert property %s.%s: %v", typ, key, cerr)
					handled[keyNode] = true
					continue
				}
				return reflect.Value{}, cerr
			}
			if serr := c.setField(instance, p, val, valNode, ppath); serr != nil {
				if p.ignoreErrs {
					c.logger.Debugf("ignoring: could not assign converted property %s.%s: %v", typ, key, serr)
					handled[keyNode] = true
					continue
				}
				return reflect.Value{}, serr
			}
			handled[keyNode] = true
		case p.ignoreErrs:
			// Probe construction; failures leave the field at its zero
			// value instead of aborting the enclosing object. On success
			// the value is assigned right away: the probe may already have
			// consumed override entries in the subtree, so re-running
			// default assignment would see a pruned node.
			v, perr := c.construct(ctx, st, ppath, valNode, p.typ)
			if perr != nil {
				c.logger.Debugf("ignoring: could not construct property %s.%s: %v", typ, key, perr)
				handled[keyNode] = true
				continue
			}
			av, aerr := coerceValue(v, p.typ, valNode, ppath)
			if aerr != nil {
				c.logger.Debugf("ignoring: could not assign property %s.%s: %v", typ, key, aerr)
				handled[keyNode] = true
				continue
			}
			instance.Field(p.index).Set(av)
			handled[keyNode] = true
		}
	}

	if len(handled) > 0 {
		kept := make([]*yaml.Node, 0, len(node.Content))
		for i := 0; i+1 < len(node.Content); i += 2 {
			if !handled[node.Content[i]] {
				kept = append(kept, node.Content[i], node.Content[i+1])
			}
		}
		node.Content = kept
	}

	// Second pass: default assignment for the remaining entries.
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		p := st.nodeProp[valNode]
		ppath := path + "/" + keyNode.Value
		v, verr := c.construct(ctx, st, ppath, valNode, p.typ)
		if verr != nil {
			return reflect.Value{}, verr
		}
		av, aerr := coerceValue(v, p.typ, valNode, ppath)
		if aerr != nil {
			return reflect.Value{}, aerr
		}
		instance.Field(p.index).Set(av)
	}
	return instance, nil
}

// constructAsList wraps a non-sequence node into a one-element slice. The
// element type comes from the property the node was associated with, falling
// back to the slice's own element type.
func (c *Constructor) constructAsList(ctx context.Context, st *decodeState, path string, node *yaml.Node, sliceType reflect.Type) (reflect.Value, error) {
	elem := sliceType.Elem()
	if p := st.nodeProp[node]; p != nil && p.elem != nil {
		elem = p.elem
	}
	single, err := c.construct(ctx, st, path, node, elem)
	if err != nil {
		return reflect.Value{}, err
	}
	if !single.IsValid() ||
		((single.Kind() == reflect.Interface || single.Kind() == reflect.Pointer) && single.IsZero()) {
		// the single construction yielded nothing: no list at all
		return reflect.Zero(sliceType), nil
	}
	ev, err := coerceValue(single, sliceType.Elem(), node, path)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(sliceType, 1, 1)
	out.Index(0).Set(ev)
	return out, nil
}

func (c *Constructor) constructMap(ctx context.Context, st *decodeState, path string, node *yaml.Node, typ reflect.Type) (reflect.Value, error) {
	out := reflect.MakeMapWithSize(typ, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		kv, err := c.decodeLeaf(keyNode, typ.Key(), path)
		if err != nil {
			return reflect.Value{}, err
		}
		ppath := path + "/" + keyNode.Value
		vv, err := c.construct(ctx, st, ppath, valNode, typ.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		av, err := coerceValue(vv, typ.Elem(), valNode, ppath)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(kv, av)
	}
	return out, nil
}

// applyConverter feeds a scalar node's raw text through a Converter.
func (c *Constructor) applyConverter(conv Converter, node *yaml.Node, path string) (any, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, issueAt(node, path, CodeInvalidType, "converted properties require a scalar value", nil)
	}
	return conv.ConvertToModel(node.Value)
}

// decodeLeaf hands a node to the base engine for low-level decoding
// (primitive coercion, timestamps, any-typed values).
func (c *Constructor) decodeLeaf(node *yaml.Node, typ reflect.Type, path string) (reflect.Value, error) {
	if typ.Kind() == reflect.Interface {
		// The engine only fills empty interfaces; decode generically and
		// coerce so a non-empty interface target surfaces an Issue instead
		// of an engine panic.
		var raw any
		if err := node.Decode(&raw); err != nil {
			return reflect.Value{}, issueAt(node, path, CodeInvalidType, err.Error(), err)
		}
		return coerceTo(raw, typ, node, path)
	}
	p := reflect.New(typ)
	if err := node.Decode(p.Interface()); err != nil {
		return reflect.Value{}, issueAt(node, path, CodeInvalidType, err.Error(), err)
	}
	return p.Elem(), nil
}

func (c *Constructor) setField(instance reflect.Value, p *property, val any, node *yaml.Node, path string) error {
	rv, err := coerceTo(val, p.typ, node, path)
	if err != nil {
		return err
	}
	instance.Field(p.index).Set(rv)
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && (n.Tag == "!!null" || (n.Tag == "" && n.Value == ""))
}

func valueInterface(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

// coerceTo normalizes an any-typed strategy result to typ.
func coerceTo(val any, typ reflect.Type, node *yaml.Node, path string) (reflect.Value, error) {
	if val == nil {
		return reflect.Zero(typ), nil
	}
	return coerceValue(reflect.ValueOf(val), typ, node, path)
}

// coerceValue applies the assignable-then-convertible rule used for every
// field and element assignment.
func coerceValue(v reflect.Value, typ reflect.Type, node *yaml.Node, path string) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(typ), nil
	}
	if v.Type().AssignableTo(typ) {
		return v, nil
	}
	if v.Type().ConvertibleTo(typ) {
		return v.Convert(typ), nil
	}
	// a *T result satisfies a T target
	if v.Kind() == reflect.Pointer && v.Type().Elem().AssignableTo(typ) && !v.IsNil() {
		return v.Elem(), nil
	}
	return reflect.Value{}, issueAt(node, path, CodeInvalidType,
		fmt.Sprintf("cannot assign %s to %s", v.Type(), typ), nil)
}
