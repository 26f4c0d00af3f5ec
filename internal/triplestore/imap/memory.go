package imap

import (
	"errors"

	"github.com/FAU-CDI/metaextract/internal/triplestore/impl"
)

// MemoryMap is a [Map] that keeps everything in main memory.
type MemoryMap struct{}

func (MemoryMap) Forward() (HashMap[impl.Label, impl.ID], error) {
	mp := MakeMemory[impl.Label, impl.ID](0)
	return &mp, nil
}

func (MemoryMap) Reverse() (HashMap[impl.ID, impl.Label], error) {
	mp := MakeMemory[impl.ID, impl.Label](0)
	return &mp, nil
}

// Memory implements [HashMap] using a go map.
type Memory[Key comparable, Value any] struct {
	mp map[Key]Value
}

// MakeMemory makes a new memory instance.
func MakeMemory[Key comparable, Value any](size int) Memory[Key, Value] {
	return Memory[Key, Value]{
		mp: make(map[Key]Value, size),
	}
}

var errMemoryUninitialized = errors.New("map not initialized")

// Finalize is a no-op.
func (Memory[Key, Value]) Finalize() error {
	return nil
}

func (ims Memory[Key, Value]) Set(key Key, value Value) error {
	if ims.mp == nil {
		return errMemoryUninitialized
	}

	ims.mp[key] = value
	return nil
}

// Get returns the given value if it exists.
func (ims Memory[Key, Value]) Get(key Key) (Value, bool, error) {
	value, ok := ims.mp[key]
	return value, ok, nil
}

// GetZero returns the value associated with Key, or the zero value otherwise.
func (ims Memory[Key, Value]) GetZero(key Key) (Value, error) {
	return ims.mp[key], nil
}

func (ims Memory[Key, Value]) Has(key Key) (bool, error) {
	_, ok := ims.mp[key]
	return ok, nil
}

// Iterate calls f for all entries in Storage.
// there is no guarantee on order.
func (ims Memory[Key, Value]) Iterate(f func(Key, Value) error) error {
	for key, value := range ims.mp {
		if err := f(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Close closes this storage, deleting all values.
func (ims *Memory[Key, Value]) Close() error {
	ims.mp = nil
	return nil
}

func (ims Memory[Key, Value]) Count() (uint64, error) {
	return uint64(len(ims.mp)), nil
}
