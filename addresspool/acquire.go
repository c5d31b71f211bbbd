package addresspool

import (
	"bytes"
	"net"

	"github.com/AnandBibhuti/ikepool/ident"
)

// AuthMethod is the subset of a connection's negotiated IKE authentication
// method that reuse eligibility depends on.
type AuthMethod int

const (
	AuthRSASig AuthMethod = iota
	AuthECDSA
	AuthPSK
	AuthNull
)

// isReusable implements can_reuse_lease: a lease may be recovered by
// identity only if the peer authenticated with something more distinctive
// than a PSK or NULL auth, carries an identity kind that isn't itself a
// wildcard or bare address, and the daemon has uniqueIDs enabled.
func isReusable(authBy AuthMethod, peerKind ident.Kind, uniqueIDs bool) bool {
	if authBy == AuthPSK || authBy == AuthNull {
		return false
	}
	switch peerKind {
	case ident.KindNone, ident.KindNull, ident.KindIPv4Addr, ident.KindIPv6Addr:
		return false
	}
	return uniqueIDs
}

// recoverLease looks up name in its bucket chain and, on an exact match,
// binds it to the caller: unlinking it from the free list (if it was only
// lingering there) and bumping its refcount.
func (p *Pool) recoverLease(name []byte) (idx uint32, found bool) {
	if len(p.buckets) == 0 {
		return 0, false
	}
	bucket := p.bucketFor(name)
	i := p.buckets[bucket].head()
	for i != sentinel {
		l := &p.leases[i]
		next := l.reusableEntry.next
		if bytes.Equal(l.reusableName, name) {
			if l.refcount == 0 {
				removeIndex(&p.freeList, p.freeAccess(), i)
				p.nrInUse++
			}
			l.refcount++
			return i, true
		}
		i = next
	}
	return 0, false
}

// grow implements the arena-growth step of lease_an_address: doubling
// (capped at size) when the free list runs dry, re-initializing the new
// slots' list entries and prepending them to the free list, then rehashing
// every previously-reusable slot into the freshly-sized bucket array.
func (p *Pool) grow() error {
	old := p.nrLeases()
	if old == p.size {
		return ErrPoolExhausted
	}
	newLen := old * 2
	if newLen == 0 {
		newLen = 1
	}
	if newLen > p.size {
		newLen = p.size
	}

	grown := make([]lease, newLen)
	copy(grown, p.leases)
	p.leases = grown
	p.buckets = make([]list, newLen)
	for i := range p.buckets {
		p.buckets[i] = newList()
	}

	for i := old; i < newLen; i++ {
		p.leases[i] = blankLease()
		prependIndex(&p.freeList, p.freeAccess(), i)
	}

	for i := uint32(0); i < old; i++ {
		if p.leases[i].reusableName != nil {
			p.leases[i].reusableEntry = listEntry{prev: sentinel, next: sentinel}
			bucket := p.bucketFor(p.leases[i].reusableName)
			appendIndex(&p.buckets[bucket], p.bucketAccess(), i)
		}
	}
	return nil
}

// allocateFresh takes the head of the free list, possibly growing first,
// stealing its reusable_name if it was lingering, and rebinding it to name
// if the new request is itself reusable.
func (p *Pool) allocateFresh(reusable bool, name []byte) (uint32, error) {
	if p.freeList.isEmpty() {
		if err := p.grow(); err != nil {
			return 0, err
		}
	}

	idx := p.freeList.head()
	removeIndex(&p.freeList, p.freeAccess(), idx)
	l := &p.leases[idx]

	if l.reusableName != nil {
		oldBucket := p.bucketFor(l.reusableName)
		removeIndex(&p.buckets[oldBucket], p.bucketAccess(), idx)
		l.reusableName = nil
		p.nrReusable--
	}

	if reusable {
		l.reusableName = append([]byte(nil), name...)
		bucket := p.bucketFor(l.reusableName)
		appendIndex(&p.buckets[bucket], p.bucketAccess(), idx)
		p.nrReusable++
	}

	l.refcount = 1
	p.nrInUse++
	return idx, nil
}

// LeaseAnAddress assigns an address to a peer, recovering a prior lingering
// lease by identity when reuse is eligible and available, else allocating a
// fresh slot (growing the arena if necessary).
func (p *Pool) LeaseAnAddress(peerID *ident.ID, authBy AuthMethod, uniqueIDs bool) (net.IP, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	reusable := isReusable(authBy, peerID.Kind, uniqueIDs)
	var name []byte
	if reusable {
		name = []byte(ident.Format(peerID))
		if idx, found := p.recoverLease(name); found {
			return p.leaseAddress(idx), nil
		}
	}

	idx, err := p.allocateFresh(reusable, name)
	if err != nil {
		return nil, err
	}
	return p.leaseAddress(idx), nil
}
