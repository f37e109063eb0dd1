package extract

import (
	"sync"

	"github.com/fwojciec/prodner"
)

// Model holds the recognizer used for live extraction. It starts not
// loaded; Load installs a recognizer or records why loading failed.
// A Model is safe for concurrent use.
type Model struct {
	mu   sync.RWMutex
	name string
	rec  prodner.Recognizer
	err  error
}

// ModelStatus describes the model for health reporting.
type ModelStatus struct {
	Name   string `json:"name,omitempty"`
	Loaded bool   `json:"loaded"`
	Reason string `json:"reason,omitempty"`
}

// NewModel returns a model with no recognizer loaded.
func NewModel() *Model {
	return &Model{}
}

// LoadedModel returns a model that already holds rec.
func LoadedModel(name string, rec prodner.Recognizer) *Model {
	m := NewModel()
	m.Load(name, func() (prodner.Recognizer, error) { return rec, nil })
	return m
}

// Load calls open and installs the recognizer it returns. On failure the
// previous recognizer is dropped and the error is kept as the reason.
func (m *Model) Load(name string, open func() (prodner.Recognizer, error)) error {
	rec, err := open()
	if err == nil && rec == nil {
		err = prodner.Errorf(prodner.EUNAVAILABLE, "model %q produced no recognizer", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
	if err != nil {
		m.rec = nil
		m.err = err
		return err
	}
	m.rec = rec
	m.err = nil
	return nil
}

// Recognizer returns the loaded recognizer, or EUNAVAILABLE.
func (m *Model) Recognizer() (prodner.Recognizer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rec == nil {
		if m.err != nil {
			return nil, prodner.Errorf(prodner.EUNAVAILABLE, "model %q not loaded: %v", m.name, m.err)
		}
		return nil, prodner.Errorf(prodner.EUNAVAILABLE, "model not loaded")
	}
	return m.rec, nil
}

// Status reports whether a recognizer is loaded.
func (m *Model) Status() ModelStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := ModelStatus{Name: m.name, Loaded: m.rec != nil}
	if m.err != nil {
		s.Reason = m.err.Error()
	}
	return s
}
