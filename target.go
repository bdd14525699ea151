package cadence

// Target is anything with named, settable properties reachable by dot-path
// ("position.x", "bones.Head.rotation"). The mixer and the tween engine
// write sampled values through this interface; nothing beyond settable
// paths is required of a host object.
type Target interface {
	// Get reads the property at path. ok is false for unknown paths.
	Get(path string) (Value, bool)
	// Set writes the property at path.
	Set(path string, v Value)
}

// Disposable is an optional Target extension. A target reporting
// IsDisposed() == true causes actions and tweeners bound to it to stop
// without further writes: a non-owning liveness probe instead of a
// lifetime-coupled pointer registry.
type Disposable interface {
	IsDisposed() bool
}

// Object is a map-backed Target for tests, examples, and hosts without a
// property system of their own.
type Object struct {
	props    map[string]Value
	disposed bool
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{props: make(map[string]Value)}
}

// Get reads the property at path.
func (o *Object) Get(path string) (Value, bool) {
	v, ok := o.props[path]
	return v, ok
}

// Set writes the property at path.
func (o *Object) Set(path string, v Value) {
	o.props[path] = v
}

// SetFloat is shorthand for Set(path, Float(v)).
func (o *Object) SetFloat(path string, v float64) {
	o.Set(path, Float(v))
}

// Float reads a scalar property, returning 0 for unknown paths.
func (o *Object) Float(path string) float64 {
	return o.props[path].X
}

// Dispose marks the object dead. Anything bound to it stops on its next
// update without writing.
func (o *Object) Dispose() {
	o.disposed = true
}

// IsDisposed reports whether Dispose has been called.
func (o *Object) IsDisposed() bool {
	return o.disposed
}
