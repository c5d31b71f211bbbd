package addresspool

import "net"

// RelLeaseAddr returns the lease bound to clientAddr. A one-time lease
// (no reusableName) is prepended to the free list so it is recycled
// promptly; a reusable lease whose refcount has dropped to 0 is appended
// instead, so it lingers at the tail and the same peer is likely to recover
// it on its next lease_an_address call. Releasing an address this pool
// never leased is a programmer error and panics.
func (p *Pool) RelLeaseAddr(clientAddr net.IP) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.indexOf(clientAddr)
	l := &p.leases[idx]
	if l.refcount == 0 {
		panic("addresspool: release of lease already at zero refcount")
	}
	l.refcount--

	if l.reusableName != nil {
		if l.refcount == 0 {
			p.nrInUse--
			appendIndex(&p.freeList, p.freeAccess(), idx)
		}
		return
	}

	if l.refcount != 0 {
		panic("addresspool: one-time lease released while still shared")
	}
	p.nrInUse--
	prependIndex(&p.freeList, p.freeAccess(), idx)
}
