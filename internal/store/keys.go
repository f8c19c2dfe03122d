package store

import (
	"bytes"
	"sync"
)

// Key prefixes. Every cached document lives at prefix+id; its secondary index
// entries live at prefix+"idx:"+index+":"+value and hold the owning id.
const (
	prefixBook  = "book:"
	prefixList  = "list:"
	indexMarker = "idx:"
)

// Lookup keys are short-lived, so their buffers are pooled. Keys written
// inside a transaction must outlive it and are allocated with indexKey.
var keyPool = sync.Pool{
	New: func() any {
		return make([]byte, 0, 128)
	},
}

// lookupKey builds prefix+id in a pooled buffer. Callers release it with
// releaseKey once the read is done.
func lookupKey(prefix, id string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = append(buf[:0], prefix...)
	return append(buf, id...)
}

// lookupIndexKey is lookupKey for an index entry.
func lookupIndexKey(prefix, index, value string) []byte {
	buf, _ := keyPool.Get().([]byte)
	return appendIndexKey(buf[:0], prefix, index, value)
}

// indexKey allocates an index entry key that may be handed to txn.Set.
func indexKey(prefix, index, value string) []byte {
	return appendIndexKey(make([]byte, 0, len(prefix)+len(indexMarker)+len(index)+1+len(value)), prefix, index, value)
}

func appendIndexKey(buf []byte, prefix, index, value string) []byte {
	buf = append(buf, prefix...)
	buf = append(buf, indexMarker...)
	buf = append(buf, index...)
	buf = append(buf, ':')
	return append(buf, value...)
}

// isIndexKey reports whether key, found under prefix, is an index entry.
func isIndexKey(prefix string, key []byte) bool {
	return bytes.HasPrefix(key[len(prefix):], []byte(indexMarker))
}

func releaseKey(key []byte) {
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
