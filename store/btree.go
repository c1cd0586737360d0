package store

import (
	"bytes"

	"github.com/google/btree"

	"github.com/signet-one/signet/errors"
)

// btreeDegree is the branching factor for all trees in this package. Low
// degree favors the small working sets a single instruction touches.
const btreeDegree = 2

// MemStore returns an empty in-memory store. This is the backing ledger
// for the simulator and for tests; there is no persistence here.
func MemStore() CacheableKVStore {
	return &memStore{bt: btree.New(btreeDegree)}
}

type memStore struct {
	bt *btree.BTree
}

var _ CacheableKVStore = (*memStore)(nil)

func (m *memStore) Get(key []byte) ([]byte, error) {
	item := m.bt.Get(bkey{key})
	if item == nil {
		return nil, nil
	}
	return item.(setItem).value, nil
}

func (m *memStore) Has(key []byte) (bool, error) {
	return m.bt.Has(bkey{key}), nil
}

func (m *memStore) Set(key, value []byte) error {
	m.bt.ReplaceOrInsert(newSetItem(key, value))
	return nil
}

func (m *memStore) Delete(key []byte) error {
	m.bt.Delete(bkey{key})
	return nil
}

func (m *memStore) Iterate(start, end []byte, fn func(key, value []byte) bool) error {
	iter := func(item btree.Item) bool {
		si := item.(setItem)
		return fn(si.key, si.value)
	}
	switch {
	case start == nil && end == nil:
		m.bt.Ascend(iter)
	case start == nil:
		m.bt.AscendLessThan(bkey{end}, iter)
	case end == nil:
		m.bt.AscendGreaterOrEqual(bkey{start}, iter)
	default:
		m.bt.AscendRange(bkey{start}, bkey{end}, iter)
	}
	return nil
}

// CacheWrap returns an overlay that can later be written to this store or
// discarded.
func (m *memStore) CacheWrap() KVCacheWrap {
	return NewCacheWrap(m)
}

// NewCacheWrap places a btree overlay over any KVStore. Reads fall through
// to the parent for keys the overlay has not touched; writes and deletes
// are recorded in the overlay only, until Write pushes them down.
func NewCacheWrap(parent KVStore) KVCacheWrap {
	return &cacheWrap{
		bt:     btree.New(btreeDegree),
		parent: parent,
	}
}

type cacheWrap struct {
	bt     *btree.BTree
	parent KVStore
}

var _ KVCacheWrap = (*cacheWrap)(nil)

func (c *cacheWrap) Get(key []byte) ([]byte, error) {
	if item := c.bt.Get(bkey{key}); item != nil {
		switch t := item.(type) {
		case setItem:
			return t.value, nil
		case deletedItem:
			return nil, nil
		default:
			return nil, errors.Wrapf(errors.ErrType, "unknown overlay item %#v", item)
		}
	}
	return c.parent.Get(key)
}

func (c *cacheWrap) Has(key []byte) (bool, error) {
	if item := c.bt.Get(bkey{key}); item != nil {
		_, isSet := item.(setItem)
		return isSet, nil
	}
	return c.parent.Has(key)
}

func (c *cacheWrap) Set(key, value []byte) error {
	c.bt.ReplaceOrInsert(newSetItem(key, value))
	return nil
}

func (c *cacheWrap) Delete(key []byte) error {
	c.bt.ReplaceOrInsert(newDeletedItem(key))
	return nil
}

func (c *cacheWrap) Iterate(start, end []byte, fn func(key, value []byte) bool) error {
	// Merge overlay entries with the parent's, overlay winning on equal
	// keys. Both sides are collected up front; instruction working sets
	// are small enough that this stays cheap.
	type pair struct {
		key, value []byte
		deleted    bool
	}
	var merged []pair

	if err := c.parent.Iterate(start, end, func(key, value []byte) bool {
		merged = append(merged, pair{key: key, value: value})
		return true
	}); err != nil {
		return err
	}

	overlay := func(item btree.Item) bool {
		var p pair
		switch t := item.(type) {
		case setItem:
			p = pair{key: t.key, value: t.value}
		case deletedItem:
			p = pair{key: t.key, deleted: true}
		}
		i := 0
		for i < len(merged) && bytes.Compare(merged[i].key, p.key) < 0 {
			i++
		}
		if i < len(merged) && bytes.Equal(merged[i].key, p.key) {
			merged[i] = p
		} else {
			merged = append(merged[:i], append([]pair{p}, merged[i:]...)...)
		}
		return true
	}
	switch {
	case start == nil && end == nil:
		c.bt.Ascend(overlay)
	case start == nil:
		c.bt.AscendLessThan(bkey{end}, overlay)
	case end == nil:
		c.bt.AscendGreaterOrEqual(bkey{start}, overlay)
	default:
		c.bt.AscendRange(bkey{start}, bkey{end}, overlay)
	}

	for _, p := range merged {
		if p.deleted {
			continue
		}
		if !fn(p.key, p.value) {
			break
		}
	}
	return nil
}

// Write pushes all overlay operations into the parent and invalidates the
// overlay.
func (c *cacheWrap) Write() error {
	var err error
	c.bt.Ascend(func(item btree.Item) bool {
		switch t := item.(type) {
		case setItem:
			err = c.parent.Set(t.key, t.value)
		case deletedItem:
			err = c.parent.Delete(t.key)
		}
		return err == nil
	})
	c.Discard()
	return err
}

// Discard drops all pending operations.
func (c *cacheWrap) Discard() {
	c.bt.Clear(false)
}

// CacheWrap layers another overlay on top of this one.
func (c *cacheWrap) CacheWrap() KVCacheWrap {
	return NewCacheWrap(c)
}

// ---- btree items

// keyer lets set and deleted items compare against each other.
type keyer interface {
	Key() []byte
}

type bkey struct {
	key []byte
}

var _ keyer = bkey{}
var _ btree.Item = bkey{}

func (k bkey) Key() []byte {
	return k.key
}

// Less returns true iff the second argument is greater than the first.
func (k bkey) Less(item btree.Item) bool {
	return bytes.Compare(k.key, item.(keyer).Key()) < 0
}

type setItem struct {
	bkey
	value []byte
}

func newSetItem(key, value []byte) setItem {
	return setItem{bkey: bkey{key}, value: value}
}

type deletedItem struct {
	bkey
}

func newDeletedItem(key []byte) deletedItem {
	return deletedItem{bkey{key}}
}
