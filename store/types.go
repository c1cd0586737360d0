package store

// ReadOnlyKVStore is the read interface of the ledger key-value store.
type ReadOnlyKVStore interface {
	// Get returns nil when the key is missing. An empty value and a
	// missing key are equivalent for account data.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// Iterate walks all key/value pairs with start <= key < end in
	// ascending order, calling fn for each. Iteration stops early when fn
	// returns false. Nil bounds mean unbounded.
	Iterate(start, end []byte, fn func(key, value []byte) bool) error
}

// KVStore adds the write operations.
type KVStore interface {
	ReadOnlyKVStore
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVCacheWrap is a pending overlay over another store. All writes stay in
// the overlay until Write copies them down in one step; Discard drops
// them. This is what gives instructions their all-or-nothing semantics.
type KVCacheWrap interface {
	KVStore
	// CacheWrap layers another overlay on top of this one, allowing
	// overlays to nest.
	CacheWrap() KVCacheWrap
	Write() error
	Discard()
}

// CacheableKVStore is a store that can produce overlays of itself.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}
