package yamlbean

// Package yamlbean provides:
//
// - Override-driven construction of Go structs from yaml.v3 node trees
//   (substitution types, instantiators, custom constructors, converters)
// - Auto type detection: probing substitution candidates against a mapping
//   node's keys and picking the best match deterministically
// - Per-property overrides via struct tags (alias, converter, constructBy,
//   ignore) with named strategy descriptors registered at startup
// - A stable error model via Issues (path, code, line/column)
//
// Design policy:
// - Keep only public APIs in the root package; ready-made converters live
//   under codec/ and runnable demos under examples/.
// - Registries are per-Constructor mutable state; configure before parsing.
//   DefaultRegistry carries declared (init-time) registrations and is always
//   shadowed by programmatic ones.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	c := yamlbean.NewConstructor()
//	c.RegisterSubstitutionTypes(yamlbean.TypeOf[Animal](),
//	    yamlbean.TypeOf[Cat](), yamlbean.TypeOf[Dog]())
//	err := c.Unmarshal(ctx, data, &zoo)
//
//	out, err := c.Marshal(zoo)
