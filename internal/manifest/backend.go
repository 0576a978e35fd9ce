package manifest

// Backend is the key-value layer under a Manifest. Keys are path digests,
// values are encoded records. Get returns ErrNotFound for a missing key.
type Backend interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error

	// Each calls fn for every stored key in unspecified order, stopping at
	// the first error.
	Each(fn func(key string, value []byte) error) error

	Close() error
}
