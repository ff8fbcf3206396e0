// Package models defines the in-memory records held by the directory and the
// collection store.
package models

import "slices"

// User is a registered account. Name is stored lower-cased.
//
// The ownership set (collection ids) is the only record of which collections
// a user may access; collections carry no back-reference. It is mutated only
// by the collection store, under the store's lock.
type User struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string

	collections []int
}

func NewUser(id int, name, email, passwordHash string, collections []int) *User {
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		collections:  slices.Clone(collections),
	}
}

// CollectionIDs returns a copy of the ownership set in insertion order.
func (u *User) CollectionIDs() []int {
	return slices.Clone(u.collections)
}

func (u *User) OwnsCollection(id int) bool {
	return slices.Contains(u.collections, id)
}

// AddCollection appends id unless it is already present.
func (u *User) AddCollection(id int) bool {
	if u.OwnsCollection(id) {
		return false
	}
	u.collections = append(u.collections, id)
	return true
}

func (u *User) RemoveCollection(id int) bool {
	i := slices.Index(u.collections, id)
	if i < 0 {
		return false
	}
	u.collections = slices.Delete(u.collections, i, i+1)
	return true
}
