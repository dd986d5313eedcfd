package resolver

// waiter is one caller's reply channel, tagged with the uid it submitted so
// a single waiter can be pulled back out of a fan-out group (the timeout
// path) without disturbing the others.
type waiter struct {
	uid   string
	reply chan<- wireResult
}

// RequestList is the in-flight coalescing table owned exclusively by a
// NetworkTask's multiplex loop: it has no internal locking because it is
// never touched from any goroutine but the one running that loop.
//
// Entries are keyed by did_hash. Inserting a key that already has an entry
// appends the new waiter to it and reports the request as a duplicate, so
// the caller (the multiplex loop) knows not to write a second request frame
// to the wire. The key is only removed from the table once the last waiter
// attached to it is removed.
type RequestList struct {
	entries    map[string][]waiter
	limitCount int
	totalCount int
	full       bool
}

// NewRequestList creates an empty table capped at limitCount distinct keys.
func NewRequestList(limitCount int) *RequestList {
	return &RequestList{
		entries:    map[string][]waiter{},
		limitCount: limitCount,
	}
}

// Insert registers a waiter for hash. It returns true if this is the first
// waiter for hash (the caller must emit a Request frame on the wire) or
// false if it joined an existing in-flight request (no frame needed).
func (r *RequestList) Insert(hash, uid string, reply chan<- wireResult) bool {
	if existing, ok := r.entries[hash]; ok {
		r.entries[hash] = append(existing, waiter{uid: uid, reply: reply})
		return false
	}

	r.entries[hash] = []waiter{{uid: uid, reply: reply}}
	r.totalCount++
	if r.totalCount > r.limitCount {
		r.full = true
	}
	return true
}

// Remove detaches waiters for hash. If uid is non-nil, only the waiter with
// that uid is removed (the others keep waiting); if uid is nil, every
// waiter for hash is removed and returned together, which is what happens
// when a response (or an error) arrives for that DID. It reports nil if
// hash (or hash+uid) was not found.
func (r *RequestList) Remove(hash string, uid *string) []chan<- wireResult {
	if uid != nil {
		channels, ok := r.entries[hash]
		if !ok {
			return nil
		}

		idx := -1
		for i, w := range channels {
			if w.uid == *uid {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil
		}

		removed := channels[idx].reply
		channels = append(channels[:idx], channels[idx+1:]...)
		if len(channels) == 0 {
			delete(r.entries, hash)
			r.totalCount--
			r.full = false
		} else {
			r.entries[hash] = channels
		}
		return []chan<- wireResult{removed}
	}

	channels, ok := r.entries[hash]
	if !ok {
		return nil
	}
	delete(r.entries, hash)
	r.totalCount--
	r.full = false

	out := make([]chan<- wireResult, 0, len(channels))
	for _, w := range channels {
		out = append(out, w.reply)
	}
	return out
}

// IsFull reports whether the table is over its configured limit. The
// multiplex loop stops accepting new submit commands while this is true,
// applying backpressure to callers instead of growing the table unbounded.
func (r *RequestList) IsFull() bool {
	return r.full
}

// Len returns the number of distinct in-flight keys.
func (r *RequestList) Len() int {
	return r.totalCount
}
