package yamlbean

import (
	"context"
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Constructor is one construction-layer instance sitting between the base
// YAML engine's node tree and strongly-typed Go values. Its registries are
// mutable instance state: configure them before parsing begins. A Constructor
// handles one document at a time; concurrent parsing requires separate
// instances or external synchronization.
type Constructor struct {
	reg                *Registry
	globalInstantiator Instantiator
	logger             logrus.Ext1FieldLogger
	caseInsensitive    bool
	beanCache          map[reflect.Type]*beanInfo
}

// Option configures a Constructor at creation time.
type Option func(*Constructor)

// CaseInsensitive makes key-to-property matching independent of case.
func CaseInsensitive() Option {
	return func(c *Constructor) { c.caseInsensitive = true }
}

// WithLogger replaces the default logrus standard logger.
func WithLogger(l logrus.Ext1FieldLogger) Option {
	return func(c *Constructor) { c.logger = l }
}

// NewConstructor creates a Constructor with an empty instance registry.
func NewConstructor(opts ...Option) *Constructor {
	c := &Constructor{
		reg:       NewRegistry(),
		logger:    logrus.StandardLogger(),
		beanCache: make(map[reflect.Type]*beanInfo),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Registry exposes the instance registry for direct manipulation.
func (c *Constructor) Registry() *Registry { return c.reg }

// RegisterSubstitutionTypes registers substitution candidates for forType on
// this instance, shadowing any DefaultRegistry entry.
func (c *Constructor) RegisterSubstitutionTypes(forType reflect.Type, substitutionTypes ...reflect.Type) {
	c.reg.RegisterSubstitutionTypes(forType, substitutionTypes...)
}

// RegisterType registers a full TypeOverride for forType on this instance.
func (c *Constructor) RegisterType(forType reflect.Type, ov *TypeOverride) {
	c.reg.RegisterType(forType, ov)
}

// RegisterCustomConstructor registers a type-level custom constructor on
// this instance.
func (c *Constructor) RegisterCustomConstructor(forType reflect.Type, cc CustomConstructor) {
	c.reg.RegisterCustomConstructor(forType, cc)
}

// RegisterInstantiator registers a type-specific instantiator on this
// instance.
func (c *Constructor) RegisterInstantiator(forType reflect.Type, in Instantiator) {
	c.reg.RegisterInstantiator(forType, in)
}

// SetGlobalInstantiator installs an instantiator consulted for every type
// that has no type-specific registration. Returning nil from it falls back
// to the default instantiation logic. Register DefaultInstantiator for a
// type to cancel the global one there.
func (c *Constructor) SetGlobalInstantiator(in Instantiator) {
	c.globalInstantiator = in
}

// UnregisterTypes removes all programmatic TypeOverride registrations from
// this instance. DefaultRegistry entries are unaffected.
func (c *Constructor) UnregisterTypes() {
	c.reg.UnregisterTypes()
}

// Construct builds out (a non-nil pointer) from an already-parsed node tree.
// The transient node→property state lives for exactly this call, so a
// Constructor can be reused across documents without leakage.
func (c *Constructor) Construct(ctx context.Context, node *yaml.Node, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Issues{{Path: "/", Code: CodeTargetInvalid, Message: fmt.Sprintf("target must be a non-nil pointer, got %T", out)}}
	}
	st := &decodeState{nodeProp: make(map[*yaml.Node]*property)}
	v, err := c.construct(ctx, st, "", node, rv.Type().Elem())
	if err != nil {
		return err
	}
	av, err := coerceValue(v, rv.Type().Elem(), node, "")
	if err != nil {
		return err
	}
	rv.Elem().Set(av)
	return nil
}

// Unmarshal parses data with the base engine and constructs it into out
// using this Constructor's overrides.
func (c *Constructor) Unmarshal(ctx context.Context, data []byte, out any) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Issues{{Path: "/", Code: CodeInvalidType, Message: err.Error(), Cause: err}}
	}
	return c.Construct(ctx, &root, out)
}

// Unmarshal is the package-level convenience entry point: a fresh
// Constructor backed only by DefaultRegistry declarations.
func Unmarshal(ctx context.Context, data []byte, out any, opts ...Option) error {
	return NewConstructor(opts...).Unmarshal(ctx, data, out)
}

// TypeOf is shorthand for reflect.TypeOf on a zero value of T, convenient
// for registration calls involving interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
