package igraph

import (
	"io"

	"github.com/FAU-CDI/metaextract/internal/triplestore/imap"
	"github.com/FAU-CDI/metaextract/internal/triplestore/impl"
)

// Engine represents an object that creates storages for an [Index].
type Engine interface {
	imap.Map

	Data() (imap.HashMap[impl.ID, impl.Datum], error)
	PSOIndex() (ThreeStorage, error)
	POSIndex() (ThreeStorage, error)
}

// ThreeStorage stores (a, b, c) tuples of ids and can list all c for a given (a, b).
type ThreeStorage interface {
	io.Closer

	// Add adds the tuple (a, b, c).
	// present indicates if the tuple was already contained in the storage.
	Add(a, b, c impl.ID) (present bool, err error)

	// Count counts the overall number of entries in the storage.
	Count() (int64, error)

	// Finalize informs the storage that no more calls to Add will be made.
	Finalize() error

	// Fetch iterates over all tuples (a, b, c) in c-order.
	// If f returns an error, iteration stops and the error is returned to the caller.
	Fetch(a, b impl.ID, f func(c impl.ID) error) error

	// Has checks if the given tuple exists.
	Has(a, b, c impl.ID) (bool, error)
}
