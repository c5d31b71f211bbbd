package addresspool

// sentinel terminates every intrusive list; a valid index is always
// < nrLeases for the arena it belongs to.
const sentinel = ^uint32(0)

// listEntry is the prev/next pair embedded in a lease slot for whichever
// list currently owns it (the pool's free list, or a bucket's reusable
// chain).
type listEntry struct {
	prev, next uint32
}

// list is an intrusive doubly-linked list head: first/last slot indices and
// a running count. The linked slots live in some other slice (the lease
// arena); list only ever sees them through an entryAccess.
type list struct {
	first, last uint32
	nr          uint32
}

func newList() list {
	return list{first: sentinel, last: sentinel}
}

func (l *list) isEmpty() bool {
	return l.first == sentinel
}

func (l *list) head() uint32 {
	return l.first
}

// entryAccess indirects list operations through the embedding slice (the
// lease arena), since a single lease carries two different listEntry
// fields depending on which list it's threaded into.
type entryAccess struct {
	get func(uint32) listEntry
	set func(uint32, listEntry)
}

// appendIndex links idx in at the tail of l.
func appendIndex(l *list, a entryAccess, idx uint32) {
	a.set(idx, listEntry{prev: l.last, next: sentinel})
	if l.last != sentinel {
		prev := a.get(l.last)
		prev.next = idx
		a.set(l.last, prev)
	} else {
		l.first = idx
	}
	l.last = idx
	l.nr++
}

// prependIndex links idx in at the head of l.
func prependIndex(l *list, a entryAccess, idx uint32) {
	a.set(idx, listEntry{prev: sentinel, next: l.first})
	if l.first != sentinel {
		next := a.get(l.first)
		next.prev = idx
		a.set(l.first, next)
	} else {
		l.last = idx
	}
	l.first = idx
	l.nr++
}

// removeIndex unlinks idx from l, wherever in the chain it sits, and resets
// its own prev/next to sentinel.
func removeIndex(l *list, a entryAccess, idx uint32) {
	e := a.get(idx)
	if e.prev != sentinel {
		prev := a.get(e.prev)
		prev.next = e.next
		a.set(e.prev, prev)
	} else {
		l.first = e.next
	}
	if e.next != sentinel {
		next := a.get(e.next)
		next.prev = e.prev
		a.set(e.next, next)
	} else {
		l.last = e.prev
	}
	a.set(idx, listEntry{prev: sentinel, next: sentinel})
	l.nr--
}

// hasher is the bucket hash: h = 0; h = h*251 + b for each byte of name.
// 251 is prime and close to 256; the original imposes no stronger
// requirement.
func hasher(name []byte) uint32 {
	var h uint32
	for _, b := range name {
		h = h*251 + uint32(b)
	}
	return h
}
