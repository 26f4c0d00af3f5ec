package imap

//spellchecker:words syndtr goleveldb leveldb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/FAU-CDI/metaextract/internal/triplestore/impl"
	"github.com/syndtr/goleveldb/leveldb"
)

// DiskMap is a [Map] that persists its storages inside a directory.
type DiskMap struct {
	Path string
}

var (
	_ Map = (*DiskMap)(nil)
	_ Map = MemoryMap{}
)

func (dm DiskMap) Forward() (HashMap[impl.Label, impl.ID], error) {
	ds, err := NewDiskStorage[impl.Label, impl.ID](filepath.Join(dm.Path, "forward.leveldb"))
	if err != nil {
		return nil, err
	}

	ds.MarshalKey = func(key impl.Label) ([]byte, error) {
		return impl.LabelAsByte(key), nil
	}
	ds.UnmarshalKey = func(dest *impl.Label, src []byte) error {
		*dest = impl.ByteAsLabel(src)
		return nil
	}
	ds.MarshalValue = impl.MarshalID
	ds.UnmarshalValue = impl.UnmarshalID

	return ds, nil
}

func (dm DiskMap) Reverse() (HashMap[impl.ID, impl.Label], error) {
	ds, err := NewDiskStorage[impl.ID, impl.Label](filepath.Join(dm.Path, "reverse.leveldb"))
	if err != nil {
		return nil, err
	}

	ds.MarshalKey = impl.MarshalID
	ds.UnmarshalKey = impl.UnmarshalID
	ds.MarshalValue = func(value impl.Label) ([]byte, error) {
		return impl.LabelAsByte(value), nil
	}
	ds.UnmarshalValue = func(dest *impl.Label, src []byte) error {
		*dest = impl.ByteAsLabel(src)
		return nil
	}

	return ds, nil
}

// NewDiskStorage creates a new disk-based storage at the given path.
// Any previous database at path is wiped.
func NewDiskStorage[Key comparable, Value any](path string) (*DiskStorage[Key, Value], error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("failed to cleanup path: %w", err)
	}

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}

	storage := &DiskStorage[Key, Value]{
		DB: db,

		MarshalKey: func(key Key) ([]byte, error) {
			return json.Marshal(key)
		},
		UnmarshalKey: func(dest *Key, src []byte) error {
			return json.Unmarshal(src, dest)
		},
		MarshalValue: func(value Value) ([]byte, error) {
			return json.Marshal(value)
		},
		UnmarshalValue: func(dest *Value, src []byte) error {
			return json.Unmarshal(src, dest)
		},
	}
	return storage, nil
}

// DiskStorage implements [HashMap] on top of a leveldb database.
type DiskStorage[Key comparable, Value any] struct {
	DB *leveldb.DB

	MarshalKey     func(key Key) ([]byte, error)
	UnmarshalKey   func(dest *Key, src []byte) error
	MarshalValue   func(value Value) ([]byte, error)
	UnmarshalValue func(dest *Value, src []byte) error
}

func (ds *DiskStorage[Key, Value]) Set(key Key, value Value) error {
	keyB, err := ds.MarshalKey(key)
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}
	valueB, err := ds.MarshalValue(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := ds.DB.Put(keyB, valueB, nil); err != nil {
		return fmt.Errorf("failed to set value for key: %w", err)
	}
	return nil
}

// Get returns the given value if it exists.
func (ds *DiskStorage[Key, Value]) Get(key Key) (v Value, ok bool, err error) {
	keyB, err := ds.MarshalKey(key)
	if err != nil {
		return v, false, fmt.Errorf("failed to marshal key: %w", err)
	}

	valueB, err := ds.DB.Get(keyB, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("failed to get key from database: %w", err)
	}

	if err := ds.UnmarshalValue(&v, valueB); err != nil {
		return v, false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return v, true, nil
}

// GetZero returns the value associated with Key, or the zero value otherwise.
func (ds *DiskStorage[Key, Value]) GetZero(key Key) (Value, error) {
	value, _, err := ds.Get(key)
	return value, err
}

func (ds *DiskStorage[Key, Value]) Has(key Key) (bool, error) {
	keyB, err := ds.MarshalKey(key)
	if err != nil {
		return false, fmt.Errorf("failed to marshal key: %w", err)
	}

	ok, err := ds.DB.Has(keyB, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check database for key: %w", err)
	}
	return ok, nil
}

// Iterate calls f for all entries in Storage, in order of the encoded keys.
func (ds *DiskStorage[Key, Value]) Iterate(f func(Key, Value) error) error {
	it := ds.DB.NewIterator(nil, nil)
	defer it.Release()

	for it.Next() {
		var key Key
		if err := ds.UnmarshalKey(&key, it.Key()); err != nil {
			return err
		}
		var value Value
		if err := ds.UnmarshalValue(&value, it.Value()); err != nil {
			return err
		}
		if err := f(key, value); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("failed to iterate database: %w", err)
	}
	return nil
}

// Finalize marks the underlying database as read-only.
func (ds *DiskStorage[Key, Value]) Finalize() error {
	return ds.DB.SetReadOnly()
}

func (ds *DiskStorage[Key, Value]) Close() error {
	var err error
	if ds.DB != nil {
		err = ds.DB.Close()
	}
	ds.DB = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Count returns the number of objects in this DiskStorage.
func (ds *DiskStorage[Key, Value]) Count() (count uint64, err error) {
	it := ds.DB.NewIterator(nil, nil)
	defer it.Release()

	for it.Next() {
		count++
	}
	if err := it.Error(); err != nil {
		return 0, fmt.Errorf("failed to count database: %w", err)
	}
	return count, nil
}
