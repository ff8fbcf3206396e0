// Package ids issues integer identifiers for users, collections and entries.
package ids

import (
	"fmt"
	"sync"
)

// Namespace selects one of the independent counters.
type Namespace int

const (
	User Namespace = iota
	Collection
	Entry
	namespaceCount
)

func (n Namespace) String() string {
	switch n {
	case User:
		return "user"
	case Collection:
		return "collection"
	case Entry:
		return "entry"
	default:
		return fmt.Sprintf("namespace(%d)", int(n))
	}
}

// Allocator hands out strictly increasing ids per namespace. Ids are never
// reused, even after the entity they named is deleted.
type Allocator struct {
	mu     sync.Mutex
	next   [namespaceCount]int
	issued bool
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns the next id in ns. An unknown namespace panics.
func (a *Allocator) Next(ns Namespace) int {
	if ns < 0 || ns >= namespaceCount {
		panic(fmt.Sprintf("ids: unknown namespace %v", ns))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.next[ns]
	a.next[ns]++
	a.issued = true
	return id
}

// Seed sets the next-to-be-issued value of each namespace. It may only run
// during startup reconstruction, before the first Next; anything else could
// hand out an id that is already in use, so it panics.
func (a *Allocator) Seed(user, collection, entry int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.issued {
		panic("ids: Seed called after ids were issued")
	}
	if user < 0 || collection < 0 || entry < 0 {
		panic(fmt.Sprintf("ids: negative seed (%d, %d, %d)", user, collection, entry))
	}
	a.next = [namespaceCount]int{user, collection, entry}
	a.issued = true
}

// Counters returns the next-to-be-issued value of every namespace.
func (a *Allocator) Counters() (user, collection, entry int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next[User], a.next[Collection], a.next[Entry]
}
