package imap

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/FAU-CDI/metaextract/internal/triplestore/impl"
)

// IMap holds forward and reverse mapping from Labels to IDs.
// An IMap may be read concurrently; however any operations which change internal state are not safe to access concurrently.
//
// The zero map is not ready for use; it should be initialized using a call to [Reset].
type IMap struct {
	finalized atomic.Bool

	forward HashMap[impl.Label, impl.ID]
	reverse HashMap[impl.ID, impl.Label]

	id impl.ID // last id handed out
}

var ErrFinalized = errors.New("IMap is finalized")

// Reset resets this IMap to be empty, closing any previously opened storages.
func (mp *IMap) Reset(engine Map) error {
	if err := mp.Close(); err != nil {
		return err
	}

	var err error
	mp.forward, err = engine.Forward()
	if err != nil {
		return fmt.Errorf("failed to open forward map: %w", err)
	}

	mp.reverse, err = engine.Reverse()
	if err != nil {
		err = fmt.Errorf("failed to open reverse map: %w", err)
		if e2 := mp.forward.Close(); e2 != nil {
			err = errors.Join(err, e2)
		}
		mp.forward = nil
		return err
	}

	mp.id.Reset()
	mp.finalized.Store(false)
	return nil
}

// Next returns a new id that is not associated with any label.
func (mp *IMap) Next() impl.ID {
	return mp.id.Inc()
}

// Finalize indicates that no more calls to Add will be made.
func (mp *IMap) Finalize() error {
	if mp.finalized.Swap(true) {
		return ErrFinalized
	}
	return errors.Join(mp.forward.Finalize(), mp.reverse.Finalize())
}

// Add inserts label into this IMap and returns the corresponding id.
// When label already exists, returns the existing id.
func (mp *IMap) Add(label impl.Label) (id impl.ID, err error) {
	if mp.finalized.Load() {
		return id, ErrFinalized
	}

	id, ok, err := mp.forward.Get(label)
	if err != nil || ok {
		return id, err
	}

	id = mp.id.Inc()
	if err := mp.forward.Set(label, id); err != nil {
		return id, fmt.Errorf("failed to store forward label: %w", err)
	}
	if err := mp.reverse.Set(id, label); err != nil {
		return id, fmt.Errorf("failed to store reverse label: %w", err)
	}
	return id, nil
}

// Forward returns the id corresponding to the given label.
// ok indicates if the label is contained in this map.
func (mp *IMap) Forward(label impl.Label) (id impl.ID, ok bool, err error) {
	return mp.forward.Get(label)
}

// Reverse returns the label corresponding to the given id.
// ok indicates if the id belongs to a label.
func (mp *IMap) Reverse(id impl.ID) (label impl.Label, ok bool, err error) {
	return mp.reverse.Get(id)
}

// Close closes any storages related to this IMap.
//
// Calling close multiple times results in err = nil.
func (mp *IMap) Close() error {
	var errs [2]error
	if mp.forward != nil {
		errs[0] = mp.forward.Close()
		mp.forward = nil
	}
	if mp.reverse != nil {
		errs[1] = mp.reverse.Close()
		mp.reverse = nil
	}
	return errors.Join(errs[:]...)
}
