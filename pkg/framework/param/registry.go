package param

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownParameter is returned when a lookup by key or ID fails
var ErrUnknownParameter = errors.New("unknown parameter")

// Registry manages processor parameters
type Registry struct {
	params map[uint32]*Parameter
	keys   map[string]uint32
	order  []uint32 // Maintain order for indexed access
	mu     sync.RWMutex
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[uint32]*Parameter),
		keys:   make(map[string]uint32),
		order:  make([]uint32, 0),
	}
}

// Add registers new parameters. IDs and keys must be unique.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if existing, exists := r.params[p.ID]; exists {
			return fmt.Errorf("parameter ID %d already used by '%s'", p.ID, existing.Name)
		}
		if p.Key != "" {
			if _, exists := r.keys[p.Key]; exists {
				return fmt.Errorf("parameter key %q already registered", p.Key)
			}
			r.keys[p.Key] = p.ID
		}
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
	}

	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// GetByKey retrieves a parameter by its string key
func (r *Registry) GetByKey(key string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.keys[key]
	if !ok {
		return nil
	}
	return r.params[id]
}

// GetByIndex retrieves a parameter by index
func (r *Registry) GetByIndex(index int32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= int32(len(r.order)) {
		return nil
	}

	id := r.order[index]
	return r.params[id]
}

// Count returns the number of parameters
func (r *Registry) Count() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int32(len(r.order))
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}

	return result
}

// ResetToDefaults restores every parameter to its default value
func (r *Registry) ResetToDefaults() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.params {
		p.Reset()
	}
}

// SetPlain sets a parameter by key using a plain (unnormalized) value
func (r *Registry) SetPlain(key string, plain float64) error {
	p := r.GetByKey(key)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, key)
	}
	p.SetPlainValue(plain)
	return nil
}

// SetFromString parses text through the parameter's parser and applies it
func (r *Registry) SetFromString(key, text string) error {
	p := r.GetByKey(key)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, key)
	}
	normalized, err := p.ParseValue(text)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", key, err)
	}
	p.SetValue(normalized)
	return nil
}
