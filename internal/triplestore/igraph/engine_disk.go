package igraph

//spellchecker:words syndtr goleveldb leveldb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/FAU-CDI/metaextract/internal/triplestore/imap"
	"github.com/FAU-CDI/metaextract/internal/triplestore/impl"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// DiskEngine represents an engine that stores everything on disk.
type DiskEngine struct {
	imap.DiskMap
}

func (de DiskEngine) Data() (imap.HashMap[impl.ID, impl.Datum], error) {
	ds, err := imap.NewDiskStorage[impl.ID, impl.Datum](filepath.Join(de.Path, "data.leveldb"))
	if err != nil {
		return nil, err
	}

	ds.MarshalKey = impl.MarshalID
	ds.UnmarshalKey = impl.UnmarshalID
	ds.MarshalValue = impl.DatumAsByte
	ds.UnmarshalValue = impl.ByteAsDatum

	return ds, nil
}

func (de DiskEngine) PSOIndex() (ThreeStorage, error) {
	return NewDiskHash(filepath.Join(de.Path, "pso.leveldb"))
}
func (de DiskEngine) POSIndex() (ThreeStorage, error) {
	return NewDiskHash(filepath.Join(de.Path, "pos.leveldb"))
}

// NewDiskHash opens a new ThreeStorage at path.
// Anything previously stored at path is removed.
func NewDiskHash(path string) (ThreeStorage, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("failed to cleanup path: %w", err)
	}

	level, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}
	return &ThreeDiskHash{DB: level}, nil
}

// ThreeDiskHash implements ThreeStorage inside a leveldb database.
// Each tuple is stored as a key consisting of the encoded ids; values are empty.
type ThreeDiskHash struct {
	DB *leveldb.DB
}

func (tlm *ThreeDiskHash) Add(a, b, c impl.ID) (present bool, err error) {
	key := impl.EncodeIDs(a, b, c)

	present, err = tlm.DB.Has(key, nil)
	if err != nil {
		return false, err
	}
	if present {
		return true, nil
	}
	return false, tlm.DB.Put(key, nil, nil)
}

func (tlm *ThreeDiskHash) Count() (total int64, err error) {
	iterator := tlm.DB.NewIterator(nil, nil)
	defer iterator.Release()

	for iterator.Next() {
		total++
	}
	if err := iterator.Error(); err != nil {
		return 0, err
	}
	return total, nil
}

func (tlm *ThreeDiskHash) Finalize() error {
	return errors.Join(tlm.DB.CompactRange(util.Range{}), tlm.DB.SetReadOnly())
}

func (tlm *ThreeDiskHash) Fetch(a, b impl.ID, f func(c impl.ID) error) error {
	iterator := tlm.DB.NewIterator(util.BytesPrefix(impl.EncodeIDs(a, b)), nil)
	defer iterator.Release()

	var c impl.ID
	for iterator.Next() {
		if err := impl.UnmarshalIDs(iterator.Key(), new(impl.ID), new(impl.ID), &c); err != nil {
			return err
		}
		if err := f(c); err != nil {
			return err
		}
	}
	return iterator.Error()
}

func (tlm *ThreeDiskHash) Has(a, b, c impl.ID) (bool, error) {
	return tlm.DB.Has(impl.EncodeIDs(a, b, c), nil)
}

func (tlm *ThreeDiskHash) Close() (err error) {
	if tlm.DB != nil {
		err = tlm.DB.Close()
		tlm.DB = nil
	}
	return
}
