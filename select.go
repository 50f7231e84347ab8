package yamlbean

import (
	"reflect"

	"gopkg.in/yaml.v3"
)

// SubstitutionTypeSelector decides which concrete type a declared type
// resolves to for a given mapping node, replacing the built-in probe.
// Its decision is final and is not re-validated.
type SubstitutionTypeSelector interface {
	// DisableDefaultAlgorithm reports whether the built-in compatibility
	// probe should be skipped. When it returns false, the probe runs first
	// and its survivors are passed to SelectType; otherwise candidates is
	// empty.
	DisableDefaultAlgorithm() bool
	// SelectType returns the concrete type to construct.
	SelectType(node *yaml.Node, candidates []reflect.Type) reflect.Type
}

// selectType narrows declared to a concrete type for the given mapping node.
// Without a TypeOverride carrying substitution candidates the declared type
// is returned unchanged.
func (c *Constructor) selectType(declared reflect.Type, node *yaml.Node) reflect.Type {
	ov := c.typeOverrideFor(declared)
	if ov == nil || len(ov.SubstitutionTypes) == 0 {
		return declared
	}

	if ov.Selector != nil {
		var valid []reflect.Type
		if !ov.Selector.DisableDefaultAlgorithm() {
			valid = c.validSubstitutionTypes(declared, ov, node)
		}
		selected := ov.Selector.SelectType(node, valid)
		if selected == nil {
			c.logger.Warnf("type %s: selector %T returned no type, keeping declared type", declared, ov.Selector)
			return declared
		}
		c.logger.Debugf("type %s: substitution type %s chosen by selector %T", declared, selected, ov.Selector)
		return selected
	}

	valid := c.validSubstitutionTypes(declared, ov, node)
	if len(valid) == 0 {
		c.logger.Warnf("type %s: no possible substitution types found, using default algorithm", declared)
		return declared
	}
	if len(valid) > 1 {
		c.logger.Debugf("type %s: substitution types %v all match, choosing first", declared, valid)
	} else {
		c.logger.Tracef("type %s: using substitution type %s", declared, valid[0])
	}
	return valid[0]
}

// validSubstitutionTypes runs the built-in compatibility probe: a candidate
// survives when every key of the mapping node matches one of its properties
// or aliases. A lookup failure while probing a key disqualifies the
// candidate; it never aborts construction.
func (c *Constructor) validSubstitutionTypes(declared reflect.Type, ov *TypeOverride, node *yaml.Node) []reflect.Type {
	var valid []reflect.Type
	for _, cand := range ov.SubstitutionTypes {
		st := cand
		if st.Kind() == reflect.Pointer {
			st = st.Elem()
		}
		bi, err := c.introspect(st)
		if err != nil {
			c.logger.Debugf("substitution probe for %s: cannot introspect candidate %s: %v", declared, cand, err)
			continue
		}
		ok := true
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				c.logger.Debugf("substitution probe for %s: candidate %s: key at line %d is not a scalar", declared, cand, keyNode.Line)
				ok = false
				break
			}
			if c.resolveProperty(bi, keyNode.Value) == nil {
				c.logger.Debugf("substitution probe for %s: candidate %s has no property %q", declared, cand, keyNode.Value)
				ok = false
				break
			}
		}
		if ok {
			valid = append(valid, cand)
		}
	}
	c.logger.Tracef("type %s: valid substitution types: %v", declared, valid)
	return valid
}
