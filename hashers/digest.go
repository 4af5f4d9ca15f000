package hashers

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"hash/adler32"
	"hash/crc32"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Provider computes named digests.
//
// Size and Digest must fail with an error wrapping
// errkind.ErrUnsupportedAlgorithm for names they do not recognise, and Digest
// must be a pure function of (algo, data).
type Provider interface {
	Size(algo string) (int, error)
	Digest(algo string, data []byte) ([]byte, error)
}

// Factory returns a fresh hash.Hash for one digest computation.
type Factory func() hash.Hash

// Registry is a Provider backed by hash.Hash factories. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	sizes     map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{},
		sizes:     map[string]int{},
	}
}

// Register adds algo. Names are case sensitive and must be unique.
func (r *Registry) Register(algo string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[algo]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAlg, algo)
	}
	r.factories[algo] = f
	r.sizes[algo] = f().Size()
	return nil
}

func (r *Registry) factory(algo string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[algo]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgo, algo)
	}
	return f, nil
}

func (r *Registry) Size(algo string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.sizes[algo]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgo, algo)
	}
	return n, nil
}

func (r *Registry) Digest(algo string, data []byte) ([]byte, error) {
	f, err := r.factory(algo)
	if err != nil {
		return nil, err
	}
	h := f()
	h.Write(data)
	return h.Sum(nil), nil
}

// Algorithms returns the registered names, sorted.
func (r *Registry) Algorithms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustBlake2b(size int) Factory {
	return func() hash.Hash {
		// only errors for a non nil key
		h, _ := blake2b.New(size, nil)
		return h
	}
}

// builtin names follow the php hash_algos() spelling where one exists, so
// persisted {"algo": ...} values stay portable.
var builtin = []struct {
	name string
	f    Factory
}{
	{"md5", md5.New},
	{"sha1", sha1.New},
	{"sha224", sha256.New224},
	{"sha256", sha256.New},
	{"sha384", sha512.New384},
	{"sha512/256", sha512.New512_256},
	{"sha512", sha512.New},
	{"sha3-256", sha3.New256},
	{"sha3-512", sha3.New512},
	{"blake2b-256", mustBlake2b(blake2b.Size256)},
	{"blake2b-512", mustBlake2b(blake2b.Size)},
	{"crc32b", func() hash.Hash { return crc32.NewIEEE() }},
	{"adler32", func() hash.Hash { return adler32.New() }},
	{"fnv1a64", func() hash.Hash { return fnv.New64a() }},
	{"murmur3-32", func() hash.Hash { return murmur3.New32() }},
	{"murmur3-128", func() hash.Hash { return murmur3.New128() }},
	{"xxh64", func() hash.Hash { return xxhash.New() }},
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process wide registry holding the builtin digests.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, b := range builtin {
			if err := defaultRegistry.Register(b.name, b.f); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}

// Algorithms lists the digests of the default registry.
func Algorithms() []string {
	return Default().Algorithms()
}
