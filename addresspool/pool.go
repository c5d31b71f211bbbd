// Package addresspool implements the lease arena that assigns single IP
// addresses from configured ranges to remote peers during IKE
// configuration exchanges, with reuse-by-identity, reference-counted pool
// install/teardown, and overlap detection across concurrently-declared
// pools. It generalizes the shape of the teacher's range-allocator plugin
// (a package-level handler over a lease table) to an explicit arena type
// with intrusive doubly-linked lists, matching the source's data structure
// instead of a plain map.
package addresspool

import (
	"bytes"
	"encoding/binary"
	"math"
	"net"
	"sync"

	"github.com/AnandBibhuti/ikepool/logger"
)

var log = logger.GetLogger("addresspool")

// Range is an inclusive IP address range. Both ends must be the same
// address family.
type Range struct {
	Start, End net.IP
}

// size computes end-start+1. For IPv6 ranges wider than 2^32 addresses it
// saturates to math.MaxUint32 and reports truncation, per spec: lease
// indices are a 32-bit space regardless of address family.
func (r Range) size() (uint32, bool) {
	start := r.Start.To16()
	end := r.End.To16()
	if start == nil || end == nil {
		return 0, false
	}
	diff := new(bigUint)
	diff.subIP(end, start)
	diff.addOne()
	return diff.saturateUint32()
}

func compareIP(a, b net.IP) int {
	return bytes.Compare(a.To16(), b.To16())
}

// Pool is one installed address range and its lease arena.
type Pool struct {
	mu sync.Mutex

	Range     Range
	size      uint32
	Truncated bool

	leases  []lease
	buckets []list

	freeList   list
	nrInUse    uint32
	nrReusable uint32

	refcount uint32

	next *Pool // registry linkage
}

func (p *Pool) nrLeases() uint32 {
	return uint32(len(p.leases))
}

// Size returns the pool's total address capacity.
func (p *Pool) Size() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

func (p *Pool) freeAccess() entryAccess {
	return entryAccess{
		get: func(i uint32) listEntry { return p.leases[i].freeEntry },
		set: func(i uint32, e listEntry) { p.leases[i].freeEntry = e },
	}
}

func (p *Pool) bucketAccess() entryAccess {
	return entryAccess{
		get: func(i uint32) listEntry { return p.leases[i].reusableEntry },
		set: func(i uint32, e listEntry) { p.leases[i].reusableEntry = e },
	}
}

func (p *Pool) bucketFor(name []byte) uint32 {
	return hasher(name) % uint32(len(p.buckets))
}

// leaseAddress computes range.Start + idx, adding idx in network-byte-order
// arithmetic on the address's last 4 octets only -- matching the source's
// simplification, which never carries into the upper 12 octets of an IPv6
// address. Pools are sized so idx always fits in the last 4 octets.
func (p *Pool) leaseAddress(idx uint32) net.IP {
	v4 := p.Range.Start.To4()
	if v4 != nil {
		out := append(net.IP(nil), v4...)
		n := binary.BigEndian.Uint32(out)
		binary.BigEndian.PutUint32(out, n+idx)
		return out
	}
	out := append(net.IP(nil), p.Range.Start.To16()...)
	n := binary.BigEndian.Uint32(out[12:])
	binary.BigEndian.PutUint32(out[12:], n+idx)
	return out
}

// indexOf computes the slot index for addr, the inverse of leaseAddress.
// Panics (an internal invariant violation, per spec §7) if addr falls
// outside the pool's lease arena.
func (p *Pool) indexOf(addr net.IP) uint32 {
	var n, base uint32
	if v4 := p.Range.Start.To4(); v4 != nil {
		base = binary.BigEndian.Uint32(v4)
		a := addr.To4()
		if a == nil {
			panic("addresspool: address family mismatch releasing lease")
		}
		n = binary.BigEndian.Uint32(a)
	} else {
		base = binary.BigEndian.Uint32(p.Range.Start.To16()[12:])
		n = binary.BigEndian.Uint32(addr.To16()[12:])
	}
	idx := n - base // unsigned wraparound is intentional; caught by the range check below
	if idx >= p.nrLeases() {
		panic("addresspool: release of address outside pool's lease arena")
	}
	return idx
}

// bigUint is a minimal unsigned 128-bit accumulator used only to compute
// range sizes without risking signed overflow on IPv6 ranges.
type bigUint struct {
	hi, lo uint64
}

func (b *bigUint) subIP(end, start net.IP) {
	eHi := binary.BigEndian.Uint64(end[:8])
	eLo := binary.BigEndian.Uint64(end[8:])
	sHi := binary.BigEndian.Uint64(start[:8])
	sLo := binary.BigEndian.Uint64(start[8:])
	lo := eLo - sLo
	borrow := uint64(0)
	if eLo < sLo {
		borrow = 1
	}
	hi := eHi - sHi - borrow
	b.hi, b.lo = hi, lo
}

func (b *bigUint) addOne() {
	b.lo++
	if b.lo == 0 {
		b.hi++
	}
}

func (b *bigUint) saturateUint32() (uint32, bool) {
	if b.hi != 0 || b.lo > math.MaxUint32 {
		return math.MaxUint32, true
	}
	return uint32(b.lo), false
}
