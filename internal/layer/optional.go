package layer

// Optional is a value that may be left unset. The zero Optional is unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Set returns an Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// resolve applies the one resolution order used for every mergeable option:
// the override wins, then the layer spec, then the library default.
func resolve[T any](override, spec Optional[T], def T) T {
	if override.set {
		return override.value
	}
	if spec.set {
		return spec.value
	}
	return def
}

// mergeUniforms merges uniform maps key-wise in the same order as resolve.
func mergeUniforms(spec, override map[string]any) map[string]any {
	merged := make(map[string]any, len(spec)+len(override))
	for k, v := range spec {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
