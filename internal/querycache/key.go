package querycache

import "strings"

// keySeparator joins key elements in canonical form. Unit separator is not a
// printable character, so filter values cannot collide with the joined form.
const keySeparator = "\x1f"

// Key identifies one cacheable query result: an ordered tuple of the entity
// name followed by every filter/pagination parameter that affects the result
// set. Two keys are equal iff every element compares equal; equality, not
// identity, determines cache slot identity.
type Key []string

// NewKey builds a key from an entity name and its parameters.
func NewKey(entity string, params ...string) Key {
	key := make(Key, 0, len(params)+1)
	key = append(key, entity)
	key = append(key, params...)
	return key
}

// canonical returns the unambiguous string form used to index the store.
func (k Key) canonical() string {
	return strings.Join(k, keySeparator)
}

// String returns a human-readable form for logs.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Equal reports whether two keys identify the same cache slot.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether k starts with the given prefix, element-wise.
// Invalidation targets every slot sharing a prefix, so invalidating
// ("books") covers every paginated/filtered books listing.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the key.
func (k Key) Clone() Key {
	out := make(Key, len(k))
	copy(out, k)
	return out
}
