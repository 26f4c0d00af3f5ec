package igraph

import (
	"maps"
	"slices"

	"github.com/FAU-CDI/metaextract/internal/triplestore/imap"
	"github.com/FAU-CDI/metaextract/internal/triplestore/impl"
)

// MemoryEngine represents an engine that stores everything in memory.
type MemoryEngine struct {
	imap.MemoryMap
}

func (MemoryEngine) Data() (imap.HashMap[impl.ID, impl.Datum], error) {
	ms := imap.MakeMemory[impl.ID, impl.Datum](0)
	return &ms, nil
}
func (MemoryEngine) PSOIndex() (ThreeStorage, error) {
	th := make(ThreeHash)
	return &th, nil
}
func (MemoryEngine) POSIndex() (ThreeStorage, error) {
	th := make(ThreeHash)
	return &th, nil
}

// ThreeHash implements ThreeStorage in memory.
type ThreeHash map[impl.ID]map[impl.ID]*ThreeItem

type ThreeItem struct {
	Data map[impl.ID]struct{}
	Keys []impl.ID // sorted keys of Data, only valid after Finalize
}

func (tlm ThreeHash) Add(a, b, c impl.ID) (present bool, err error) {
	switch {
	case tlm[a] == nil:
		tlm[a] = make(map[impl.ID]*ThreeItem)
		fallthrough
	case tlm[a][b] == nil:
		tlm[a][b] = &ThreeItem{
			Data: make(map[impl.ID]struct{}, 1),
		}
		fallthrough
	default:
		_, present = tlm[a][b].Data[c]
		tlm[a][b].Data[c] = struct{}{}
	}
	return present, nil
}

func (tlm ThreeHash) Count() (total int64, err error) {
	for _, a := range tlm {
		for _, b := range a {
			total += int64(len(b.Data))
		}
	}
	return total, nil
}

func (tlm ThreeHash) Finalize() error {
	for _, a := range tlm {
		for _, b := range a {
			b.Keys = slices.AppendSeq(make([]impl.ID, 0, len(b.Data)), maps.Keys(b.Data))
			slices.SortFunc(b.Keys, impl.ID.Compare)
		}
	}
	return nil
}

func (tlm ThreeHash) Fetch(a, b impl.ID, f func(c impl.ID) error) error {
	three := tlm[a][b]
	if three == nil {
		return nil
	}
	for _, c := range three.Keys {
		if err := f(c); err != nil {
			return err
		}
	}
	return nil
}

func (tlm ThreeHash) Has(a, b, c impl.ID) (bool, error) {
	three := tlm[a][b]
	if three == nil {
		return false, nil
	}
	_, ok := three.Data[c]
	return ok, nil
}

func (tlm *ThreeHash) Close() error {
	*tlm = nil
	return nil
}
