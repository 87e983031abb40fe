package keylock

import "sync"

// KeyMutex menyerialisasi write per key ledger (single-writer-at-a-time).
// Read boleh jalan paralel tanpa koordinasi; hanya read-modify-write yang
// lewat sini supaya invariant kapasitas/at-most-one-record aman.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*entry)}
}

// Lock mengunci key dan mengembalikan fungsi unlock.
// Entry dihapus lagi saat refcount nol supaya map tidak tumbuh terus.
func (k *KeyMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
