package yamlbean

import (
	"fmt"
	"reflect"
	"strings"
)

// property describes one exported struct field as seen by the construction
// pipeline: its resolved document key, optional alias, declared type and, for
// slice-typed fields, the element type used by singleton wrapping.
type property struct {
	name        string
	alias       string
	index       int
	typ         reflect.Type
	elem        reflect.Type // non-nil when typ is a slice
	ignoreErrs  bool
	converter   string // descriptor name, "" when none
	constructBy string // descriptor name, "" when none
}

type beanInfo struct {
	typ   reflect.Type
	props []*property
}

// resolveFieldKey applies the repository-wide rule to resolve a struct field's
// document key.
// Priority: yamlbean:"name=..." > yaml tag name > lower-cased field name
// (the last matching the base engine's default); "-" disables the field.
func resolveFieldKey(sf reflect.StructField) string {
	if bt, ok := sf.Tag.Lookup("yamlbean"); ok {
		for _, p := range strings.Split(bt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if yt := sf.Tag.Get("yaml"); yt != "" {
		if i := strings.IndexByte(yt, ','); i >= 0 {
			yt = yt[:i]
		}
		if yt != "" {
			return yt
		}
	}
	return strings.ToLower(sf.Name)
}

// introspect enumerates the construction-relevant properties of a struct type.
// Results are cached per Constructor; the cache shares the Constructor's
// single-document-at-a-time discipline.
func (c *Constructor) introspect(t reflect.Type) (*beanInfo, error) {
	if bi, ok := c.beanCache[t]; ok {
		return bi, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("yamlbean: %s is not a struct type", t)
	}
	bi := &beanInfo{typ: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := resolveFieldKey(sf)
		if name == "-" {
			continue
		}
		p := &property{name: name, index: i, typ: sf.Type}
		if sf.Type.Kind() == reflect.Slice {
			p.elem = sf.Type.Elem()
		}
		if bt, ok := sf.Tag.Lookup("yamlbean"); ok {
			for _, part := range strings.Split(bt, ",") {
				part = strings.TrimSpace(part)
				switch {
				case strings.HasPrefix(part, "alias="):
					p.alias = strings.TrimPrefix(part, "alias=")
				case strings.HasPrefix(part, "converter="):
					p.converter = strings.TrimPrefix(part, "converter=")
				case strings.HasPrefix(part, "constructBy="):
					p.constructBy = strings.TrimPrefix(part, "constructBy=")
				case part == "ignore":
					p.ignoreErrs = true
				}
			}
		}
		bi.props = append(bi.props, p)
	}
	c.beanCache[t] = bi
	return bi, nil
}

// resolveProperty maps a document key to a property, first by resolved name,
// then by alias. Returns nil when nothing matches.
func (c *Constructor) resolveProperty(bi *beanInfo, key string) *property {
	match := func(a, b string) bool {
		if c.caseInsensitive {
			return strings.EqualFold(a, b)
		}
		return a == b
	}
	for _, p := range bi.props {
		if match(p.name, key) {
			return p
		}
	}
	for _, p := range bi.props {
		if p.alias != "" && match(p.alias, key) {
			return p
		}
	}
	return nil
}
