package yamlbean

import "reflect"

// TypeOverride associates a declared type with its substitution candidates
// and, optionally, a selection strategy that replaces the built-in probe.
type TypeOverride struct {
	// SubstitutionTypes lists candidate concrete types in declaration order.
	// Order matters: the built-in probe breaks ties by it.
	SubstitutionTypes []reflect.Type
	// Selector, when set, decides the concrete type instead of the probe.
	Selector SubstitutionTypeSelector
}

// Registry holds the per-instance override tables consulted during
// construction: type overrides, custom constructors and instantiators.
// Entries registered here always win over DefaultRegistry entries for the
// same type.
type Registry struct {
	types         map[reflect.Type]*TypeOverride
	constructBy   map[reflect.Type]CustomConstructor
	instantiateBy map[reflect.Type]Instantiator
	// registration order of constructBy/instantiateBy keys, so interface
	// matches in the hierarchy walk stay deterministic.
	constructByOrder   []reflect.Type
	instantiateByOrder []reflect.Type
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types:         make(map[reflect.Type]*TypeOverride),
		constructBy:   make(map[reflect.Type]CustomConstructor),
		instantiateBy: make(map[reflect.Type]Instantiator),
	}
}

// RegisterType associates a TypeOverride with forType.
func (r *Registry) RegisterType(forType reflect.Type, ov *TypeOverride) {
	r.types[forType] = ov
}

// RegisterSubstitutionTypes associates substitution candidates with forType.
// Convenience for RegisterType with no selector.
func (r *Registry) RegisterSubstitutionTypes(forType reflect.Type, substitutionTypes ...reflect.Type) {
	r.RegisterType(forType, &TypeOverride{SubstitutionTypes: substitutionTypes})
}

// RegisterCustomConstructor associates a CustomConstructor with forType.
// forType may be an interface type; it then applies to every implementation
// that has no more specific entry.
func (r *Registry) RegisterCustomConstructor(forType reflect.Type, cc CustomConstructor) {
	if _, ok := r.constructBy[forType]; !ok {
		r.constructByOrder = append(r.constructByOrder, forType)
	}
	r.constructBy[forType] = cc
}

// RegisterInstantiator associates an Instantiator with forType. Like custom
// constructors, interface types are honored via the hierarchy walk.
func (r *Registry) RegisterInstantiator(forType reflect.Type, in Instantiator) {
	if _, ok := r.instantiateBy[forType]; !ok {
		r.instantiateByOrder = append(r.instantiateByOrder, forType)
	}
	r.instantiateBy[forType] = in
}

// UnregisterTypes removes all TypeOverride registrations from this Registry.
// Custom constructor and instantiator registrations are unaffected.
func (r *Registry) UnregisterTypes() {
	r.types = make(map[reflect.Type]*TypeOverride)
}

// DefaultRegistry is the process-wide registry that types join at package
// init time. It plays the role of declared (static) metadata: a Constructor
// consults its own Registry first and falls back to DefaultRegistry, so a
// programmatic registration always wins over a declared one.
var DefaultRegistry = NewRegistry()

// typeOverrideFor resolves the TypeOverride for t, instance registry first.
func (c *Constructor) typeOverrideFor(t reflect.Type) *TypeOverride {
	if ov, ok := c.reg.types[t]; ok {
		return ov
	}
	if ov, ok := DefaultRegistry.types[t]; ok {
		return ov
	}
	return nil
}

// ancestors returns the deterministic lookup linearization for t: t itself,
// then t's pointer element (or pointer type) so that T and *T registrations
// find each other. Interface entries are matched separately, in registration
// order, by lookupInHierarchy. The same linearization serves both the custom
// constructor and the instantiator resolution paths.
func ancestors(t reflect.Type) []reflect.Type {
	out := []reflect.Type{t}
	if t.Kind() == reflect.Pointer {
		out = append(out, t.Elem())
	} else {
		out = append(out, reflect.PointerTo(t))
	}
	return out
}

func implementsEntry(t, entry reflect.Type) bool {
	if entry.Kind() != reflect.Interface {
		return false
	}
	if t.Implements(entry) {
		return true
	}
	return t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(entry)
}

// lookupConstructBy resolves the custom constructor for t: exact/pointer
// match first, then interface entries in registration order; the instance
// registry shadows DefaultRegistry at every step.
func (c *Constructor) lookupConstructBy(t reflect.Type) CustomConstructor {
	for _, at := range ancestors(t) {
		if cc, ok := c.reg.constructBy[at]; ok {
			return cc
		}
		if cc, ok := DefaultRegistry.constructBy[at]; ok {
			return cc
		}
	}
	for _, entry := range c.reg.constructByOrder {
		if implementsEntry(t, entry) {
			return c.reg.constructBy[entry]
		}
	}
	for _, entry := range DefaultRegistry.constructByOrder {
		if implementsEntry(t, entry) {
			return DefaultRegistry.constructBy[entry]
		}
	}
	return nil
}

// lookupInstantiator resolves the instantiator for t using the same
// linearization as lookupConstructBy.
func (c *Constructor) lookupInstantiator(t reflect.Type) Instantiator {
	for _, at := range ancestors(t) {
		if in, ok := c.reg.instantiateBy[at]; ok {
			return in
		}
		if in, ok := DefaultRegistry.instantiateBy[at]; ok {
			return in
		}
	}
	for _, entry := range c.reg.instantiateByOrder {
		if implementsEntry(t, entry) {
			return c.reg.instantiateBy[entry]
		}
	}
	for _, entry := range DefaultRegistry.instantiateByOrder {
		if implementsEntry(t, entry) {
			return DefaultRegistry.instantiateBy[entry]
		}
	}
	return nil
}

// ---- named strategy descriptors (referenced from struct tags) ----

var (
	converterDescriptors   = map[string]Converter{}
	constructorDescriptors = map[string]CustomConstructor{}
)

// RegisterConverter registers a Converter under a name that yamlbean
// "converter=" tags can reference. Descriptors are expected to be registered
// at startup (typically from init); re-registration replaces.
func RegisterConverter(name string, conv Converter) {
	converterDescriptors[name] = conv
}

// RegisterPropertyConstructor registers a CustomConstructor under a name
// that yamlbean "constructBy=" tags can reference.
func RegisterPropertyConstructor(name string, cc CustomConstructor) {
	constructorDescriptors[name] = cc
}
