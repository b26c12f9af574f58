package di

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/multierr"
)

// RegistrationMode determines how a binding is resolved.
type RegistrationMode int

const (
	Lazy     RegistrationMode = iota // Constructed on first resolve, then cached
	Eager                            // Constructed at bind time
	Instance                         // Pre-created value
)

func (m RegistrationMode) String() string {
	switch m {
	case Lazy:
		return "lazy"
	case Eager:
		return "eager"
	case Instance:
		return "instance"
	default:
		return "unknown"
	}
}

// Container is a keyed service registry shared by an application and its
// providers. Bindings are explicit; nothing is inferred from types.
type Container interface {
	// Bind registers a constructor resolved lazily and cached.
	Bind(key string, constructor any) error
	// BindEager registers a constructor and calls it immediately.
	BindEager(key string, constructor any) error
	// Instance registers a pre-created value.
	Instance(key string, value any) error
	Resolve(key string) (any, error)
	Has(key string) bool
	Registrations() []RegistrationInfo
	// Close closes every constructed value implementing io.Closer or
	// Close(ctx) error, newest first.
	Close(ctx context.Context) error
}

// RegistrationInfo describes a binding for introspection.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode
	Initialized bool
}

type binding struct {
	key         string
	constructor any
	mode        RegistrationMode
	seq         int

	mu          sync.Mutex
	instance    any
	initialized bool
}

type container struct {
	mu       sync.RWMutex
	bindings map[string]*binding
	seq      int
}

// NewContainer returns an empty container.
func NewContainer() Container {
	return &container{bindings: make(map[string]*binding)}
}

// Bind replaces any previous binding for key.
func (c *container) Bind(key string, constructor any) error {
	if err := checkConstructor(constructor); err != nil {
		return fmt.Errorf("di: bind %s: %w", key, err)
	}
	c.put(&binding{key: key, constructor: constructor, mode: Lazy})
	return nil
}

func (c *container) BindEager(key string, constructor any) error {
	if err := checkConstructor(constructor); err != nil {
		return fmt.Errorf("di: bind %s: %w", key, err)
	}
	instance, err := c.call(constructor)
	if err != nil {
		return fmt.Errorf("di: failed to initialize eager binding %s: %w", key, err)
	}
	c.put(&binding{key: key, constructor: constructor, mode: Eager, instance: instance, initialized: true})
	return nil
}

func (c *container) Instance(key string, value any) error {
	c.put(&binding{key: key, mode: Instance, instance: value, initialized: true})
	return nil
}

func (c *container) put(b *binding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	b.seq = c.seq
	c.bindings[b.key] = b
}

func (c *container) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[key]
	return ok
}

func (c *container) Resolve(key string) (any, error) {
	c.mu.RLock()
	b, ok := c.bindings[key]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("component %w: %s", ErrNotBound, key)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return b.instance, nil
	}

	instance, err := c.call(b.constructor)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s: %w", key, err)
	}
	b.instance = instance
	b.initialized = true
	return instance, nil
}

var (
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

func checkConstructor(constructor any) error {
	fn := reflect.ValueOf(constructor)
	if fn.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %T", constructor)
	}
	t := fn.Type()
	if t.NumIn() > 1 || (t.NumIn() == 1 && t.In(0) != containerType && t.In(0) != contextType) {
		return fmt.Errorf("constructor must take no arguments, a Container or a context.Context")
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return fmt.Errorf("constructor second result must be error")
		}
	default:
		return fmt.Errorf("constructor must return (instance) or (instance, error)")
	}
	return nil
}

// call invokes a constructor of one of the forms
//
//	func() T
//	func() (T, error)
//	func(Container) (T, error)
//	func(context.Context) (T, error)
func (c *container) call(constructor any) (any, error) {
	fn := reflect.ValueOf(constructor)
	var args []reflect.Value
	if fn.Type().NumIn() == 1 {
		if fn.Type().In(0) == contextType {
			args = []reflect.Value{reflect.ValueOf(context.Background())}
		} else {
			args = []reflect.Value{reflect.ValueOf(Container(c))}
		}
	}

	results := fn.Call(args)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

// Registrations returns all bindings in bind order.
func (c *container) Registrations() []RegistrationInfo {
	bs := c.ordered()
	out := make([]RegistrationInfo, 0, len(bs))
	for _, b := range bs {
		b.mu.Lock()
		out = append(out, RegistrationInfo{Key: b.key, Mode: b.mode, Initialized: b.initialized})
		b.mu.Unlock()
	}
	return out
}

func (c *container) ordered() []*binding {
	c.mu.RLock()
	bs := make([]*binding, 0, len(c.bindings))
	for _, b := range c.bindings {
		bs = append(bs, b)
	}
	c.mu.RUnlock()
	sort.Slice(bs, func(i, j int) bool { return bs[i].seq < bs[j].seq })
	return bs
}

func (c *container) Close(ctx context.Context) error {
	bs := c.ordered()
	var errs error
	for i := len(bs) - 1; i >= 0; i-- {
		b := bs[i]
		b.mu.Lock()
		instance, ok := b.instance, b.initialized
		b.mu.Unlock()
		if !ok || instance == nil {
			continue
		}
		switch closer := instance.(type) {
		case interface{ Close(context.Context) error }:
			errs = multierr.Append(errs, closer.Close(ctx))
		case interface{ Close() error }:
			errs = multierr.Append(errs, closer.Close())
		}
	}
	return errs
}
