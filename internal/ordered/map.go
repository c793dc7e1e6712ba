// Package ordered contains a map that remembers insertion order.
package ordered

// Map is a map that iterates in insertion order. Setting an existing key
// replaces its value but keeps its original position.
//
// The zero value is ready to use. It is unsafe to call any method on Map
// concurrently.
type Map[K comparable, V any] struct {
	keys  []K
	index map[K]int
	vals  map[K]V
}

// Set sets the value for k. Returns true if k was not already present.
func (m *Map[K, V]) Set(k K, v V) bool {
	m.init()
	_, exists := m.index[k]
	if !exists {
		m.index[k] = len(m.keys)
		m.keys = append(m.keys, k)
	}

	m.vals[k] = v
	return !exists
}

// Get returns the value for k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.vals[k]
	return v, ok
}

// Has returns true if k is set.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.vals[k]
	return ok
}

// Delete removes k. The order of the remaining keys is unchanged.
func (m *Map[K, V]) Delete(k K) {
	idx, ok := m.index[k]
	if !ok {
		return
	}

	m.keys = append(m.keys[:idx], m.keys[idx+1:]...)
	delete(m.index, k)
	delete(m.vals, k)
	for i := idx; i < len(m.keys); i++ {
		m.index[m.keys[i]] = i
	}
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	result := make([]K, len(m.keys))
	copy(result, m.keys)
	return result
}

// Each calls f for every entry in insertion order. Iteration stops early
// if f returns false.
func (m *Map[K, V]) Each(f func(K, V) bool) {
	for _, k := range m.keys {
		if !f(k, m.vals[k]) {
			return
		}
	}
}

// Copy returns a shallow copy. Changes to the copy do not affect m.
func (m *Map[K, V]) Copy() *Map[K, V] {
	var result Map[K, V]
	result.init()
	for _, k := range m.keys {
		result.Set(k, m.vals[k])
	}

	return &result
}

func (m *Map[K, V]) init() {
	if m.index == nil {
		m.index = make(map[K]int)
	}
	if m.vals == nil {
		m.vals = make(map[K]V)
	}
}
