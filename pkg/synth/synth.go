// Package synth builds mock payload fragments from the variables a control
// value references.
package synth

import (
	"github.com/goliatone/go-preview/pkg/hydrate"
	"github.com/goliatone/go-preview/pkg/paths"
	"github.com/goliatone/go-preview/pkg/placeholder"
)

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithHydrator sets the collaborator used for rich-document controls. A nil
// hydrator disables the document path.
func WithHydrator(h hydrate.Hydrator) Option {
	return func(s *Synthesizer) {
		s.hydrator = h
	}
}

// WithExcludedPrefixes overrides the variable prefixes dropped from plain-text
// controls.
func WithExcludedPrefixes(prefixes ...string) Option {
	return func(s *Synthesizer) {
		s.excluded = append([]string(nil), prefixes...)
	}
}

// Synthesizer produces the payload fragment one control value needs.
type Synthesizer struct {
	hydrator hydrate.Hydrator
	excluded []string
}

// New constructs a Synthesizer. Without options it hydrates documents with a
// MailyHydrator and drops subscriber/actor variables.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		hydrator: hydrate.NewMailyHydrator(),
		excluded: append([]string(nil), hydrate.DefaultExcludedPrefixes...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// EmptyMaster returns the empty example payload documents are hydrated
// against while synthesizing.
func EmptyMaster() map[string]any {
	return map[string]any{
		"payload":    map[string]any{},
		"subscriber": map[string]any{},
		"steps":      map[string]any{},
	}
}

// Synthesize returns the nested payload fragment for controlValues[key]. A
// value that hydrates as a document contributes the document's own fragment;
// any other string contributes an empty string per referenced variable. The
// result is never nil.
func (s *Synthesizer) Synthesize(controlValues map[string]any, key string) map[string]any {
	raw, ok := controlValues[key].(string)
	if !ok || raw == "" {
		return map[string]any{}
	}

	if s.hydrator != nil {
		if result := s.hydrator.Hydrate(raw, EmptyMaster()); result.IsDocument() {
			if result.Payload == nil {
				return map[string]any{}
			}
			return result.Payload
		}
	}
	return s.fromText(raw)
}

func (s *Synthesizer) fromText(raw string) map[string]any {
	flat := make(map[string]any)
	for _, name := range placeholder.Extract(raw) {
		if placeholder.HasPrefix(name, s.excluded...) {
			continue
		}
		flat[name] = ""
	}
	return paths.Unflatten(flat)
}
