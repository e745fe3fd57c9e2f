// Package keylock - мьютекс на каждый ключ внутри процесса.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyLock выдает отдельный мьютекс на ключ, неиспользуемые записи удаляются
type KeyLock[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

func New[K comparable]() *KeyLock[K] {
	return &KeyLock[K]{locks: make(map[K]*entry)}
}

// Lock блокирует ключ и возвращает функцию разблокировки
func (k *KeyLock[K]) Lock(key K) func() {
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

// Len - количество ключей, на которых сейчас кто-то держит или ждет блокировку.
// Нужен тестам, чтобы проверить, что записи освобождаются.
func (k *KeyLock[K]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
