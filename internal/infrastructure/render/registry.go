// Package render manages the structure renderer: a process-wide, lazily
// initialised drawing engine that turns SMILES or InChI notations into SVG
// depictions for the compound detail panel.
//
// Initialisation can be slow and can fail, so the registry shares one
// in-flight initialisation among all callers and resets itself on failure so
// a later request can retry. A renderer failure never fails the exploration
// pipeline; callers fall back to an "unavailable" depiction.
package render

import (
	"context"
	"sync"

	"github.com/toxscope/toxscope/pkg/errors"
)

// Notation identifies a structure notation format.
type Notation string

const (
	NotationSMILES Notation = "smiles"
	NotationInChI  Notation = "inchi"
)

// Renderer draws a structure notation as SVG.
type Renderer interface {
	Render(ctx context.Context, notation string, kind Notation) ([]byte, error)
}

// Factory constructs the process renderer. It is invoked at most once per
// initialisation attempt.
type Factory func(ctx context.Context) (Renderer, error)

// registry holds the shared renderer state.
type registry struct {
	mu      sync.Mutex
	factory Factory

	renderer Renderer
	inflight chan struct{}
	lastErr  error
}

var global = &registry{factory: defaultFactory}

// Configure replaces the renderer factory and discards any initialised
// renderer. Intended for wiring at startup and for tests.
func Configure(factory Factory) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if factory == nil {
		factory = defaultFactory
	}
	global.factory = factory
	global.renderer = nil
	global.inflight = nil
	global.lastErr = nil
}

// Get returns the process renderer, initialising it on first use. Concurrent
// callers share a single initialisation; if it fails, every waiter receives
// the error and the next Get starts a fresh attempt.
func Get(ctx context.Context) (Renderer, error) {
	return global.get(ctx)
}

func (r *registry) get(ctx context.Context) (Renderer, error) {
	r.mu.Lock()
	if r.renderer != nil {
		defer r.mu.Unlock()
		return r.renderer, nil
	}
	if r.inflight != nil {
		done := r.inflight
		r.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), errors.ErrCodeCancelled, "renderer initialisation wait cancelled")
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.renderer != nil {
			return r.renderer, nil
		}
		return nil, r.initError()
	}

	done := make(chan struct{})
	r.inflight = done
	factory := r.factory
	r.mu.Unlock()

	renderer, err := factory(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	// Failure resets inflight so a later request retries the factory.
	r.inflight = nil
	if err != nil {
		r.lastErr = err
		close(done)
		return nil, r.initError()
	}
	r.renderer = renderer
	r.lastErr = nil
	close(done)
	return renderer, nil
}

func (r *registry) initError() error {
	if r.lastErr == nil {
		return errors.New(errors.ErrCodeRendererInit, "renderer initialisation failed")
	}
	return errors.Wrap(r.lastErr, errors.ErrCodeRendererInit, "renderer initialisation failed")
}

// Depict renders the first usable notation of the pair, preferring SMILES.
// It never returns an initialisation or drawing error; when the renderer is
// unusable it returns the unavailable depiction alongside an
// ErrCodeRendererUnavailable error so callers can surface a warning while
// still serving a body.
func Depict(ctx context.Context, smiles, inchi string) ([]byte, error) {
	notation, kind := smiles, NotationSMILES
	if notation == "" {
		notation, kind = inchi, NotationInChI
	}
	if notation == "" {
		return UnavailableDepiction(), errors.New(errors.ErrCodeNotationInvalid, "compound carries no structure notation")
	}

	renderer, err := Get(ctx)
	if err != nil {
		return UnavailableDepiction(), errors.Wrap(err, errors.ErrCodeRendererUnavailable, "structure renderer unavailable")
	}
	svg, err := renderer.Render(ctx, notation, kind)
	if err != nil {
		return UnavailableDepiction(), errors.Wrap(err, errors.ErrCodeRendererUnavailable, "structure rendering failed")
	}
	return svg, nil
}
