package yamlbean

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Marshal emits YAML for v, applying property overrides in reverse:
// converted properties emit their ConvertToYaml text and aliased properties
// emit their primary resolved key. Everything else delegates to the base
// engine's emitter.
func (c *Constructor) Marshal(v any) ([]byte, error) {
	n, err := c.encodeValue(reflect.ValueOf(v), "")
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(n)
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func (c *Constructor) encodeValue(rv reflect.Value, path string) (*yaml.Node, error) {
	if !rv.IsValid() {
		return nullNode(), nil
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nullNode(), nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		bi, err := c.introspect(rv.Type())
		if err != nil || len(bi.props) == 0 {
			break // opaque struct, let the engine render it
		}
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range bi.props {
			fv := rv.Field(p.index)
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.name}
			var valNode *yaml.Node
			if p.converter != "" {
				conv := converterDescriptors[p.converter]
				if conv == nil {
					return nil, Issues{{Path: path + "/" + p.name, Code: CodeStrategyInit,
						Message: fmt.Sprintf("converter %q on property %s.%s is not registered", p.converter, rv.Type(), p.name)}}
				}
				txt, cerr := conv.ConvertToYaml(fv.Interface())
				if cerr != nil {
					return nil, cerr
				}
				valNode = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: txt}
			} else {
				vn, verr := c.encodeValue(fv, path+"/"+p.name)
				if verr != nil {
					return nil, verr
				}
				valNode = vn
			}
			n.Content = append(n.Content, keyNode, valNode)
		}
		return n, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nullNode(), nil
		}
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i := 0; i < rv.Len(); i++ {
			en, err := c.encodeValue(rv.Index(i), fmt.Sprintf("%s/%d", path, i))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	}
	n := &yaml.Node{}
	if err := n.Encode(rv.Interface()); err != nil {
		return nil, Issues{{Path: path, Code: CodeConstructFailed, Message: err.Error(), Cause: err}}
	}
	return n, nil
}
