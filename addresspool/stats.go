package addresspool

import "github.com/bits-and-blooms/bitset"

// PoolStats is a read-only snapshot of a pool's occupancy counters, for
// cmds/ikepoolctl's stats subcommand and tests. It is diagnostic only: the
// authoritative state remains the pool's lease arena and lists.
type PoolStats struct {
	Size       uint32
	NrLeases   uint32
	NrInUse    uint32
	NrReusable uint32
	NrFree     uint32
}

// Stats returns p's current counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Size:       p.size,
		NrLeases:   p.nrLeases(),
		NrInUse:    p.nrInUse,
		NrReusable: p.nrReusable,
		NrFree:     p.freeList.nr,
	}
}

// OccupancySnapshot returns a bitset with bit i set iff lease slot i is
// currently in use, following the same bits-and-blooms/bitset usage the
// teacher's bitmap allocator uses for free/used tracking. It is a
// diagnostic view only -- the pool's intrusive free list remains the
// source of truth for allocation.
func (p *Pool) OccupancySnapshot() *bitset.BitSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	bs := bitset.New(uint(len(p.leases)))
	for i := range p.leases {
		if p.leases[i].refcount > 0 {
			bs.Set(uint(i))
		}
	}
	return bs
}
