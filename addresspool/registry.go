package addresspool

import "sync"

// Registry is the process-wide list of installed pools, mutated only by
// Install and Unreference -- both driven by connection-configuration
// lifecycle events the caller is expected to serialize. Spec §9 notes an
// explicit handle is preferable to a single package-level list; callers
// that want the original's implicit global behavior can use
// DefaultRegistry.
type Registry struct {
	mu   sync.Mutex
	head *Pool
}

// DefaultRegistry is the registry cmds/ikepoolctl uses when no explicit
// Registry is threaded through.
var DefaultRegistry = &Registry{}

// find is Find without acquiring the lock, for internal reuse from Install.
func (r *Registry) find(rng Range) (*Pool, error) {
	for p := r.head; p != nil; p = p.next {
		switch {
		case compareIP(p.Range.Start, rng.Start) == 0 && compareIP(p.Range.End, rng.End) == 0:
			return p, nil
		case compareIP(rng.End, p.Range.Start) < 0:
			continue // strictly before p's range
		case compareIP(rng.Start, p.Range.End) > 0:
			continue // strictly after p's range
		default:
			return nil, &PoolOverlapError{New: rng, Existing: p.Range}
		}
	}
	return nil, nil
}

// Find implements find_pool: an exact match is returned for reuse; a
// partial overlap is reported as PoolOverlapError; disjoint ranges and "not
// found" both return a nil pool with no error.
func (r *Registry) Find(rng Range) (*Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(rng)
}

// Install implements install_addresspool: reuse an exact-match pool,
// propagate an overlap error, or allocate and link a fresh pool at the
// registry head. On an IPv6 range wider than 2^32 addresses the pool's size
// is saturated and Pool.Truncated is set; install still proceeds, only
// logging a warning, per spec §7.
//
// Install never touches pool_refcount itself: per spec §3/§4.7 that counter
// is driven exclusively by Reference/Unreference, one bump per connection
// that attaches to the pool and one drop per detach -- callers that want an
// installed-but-unreferenced pool torn down on install (this module never
// does) would otherwise have no way to distinguish "just installed" from
// "still in use".
func (r *Registry) Install(rng Range) (*Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.find(rng)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	size, truncated := rng.size()
	p := &Pool{
		Range:     rng,
		size:      size,
		Truncated: truncated,
		freeList:  newList(),
	}
	if truncated {
		log.Warnf("addresspool %s-%s truncated to 2^32 addresses", rng.Start, rng.End)
	}

	p.next = r.head
	r.head = p
	return p, nil
}

// Reference bumps p's reference count, mirroring reference_addresspool.
func (r *Registry) Reference(p *Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.refcount++
}

// Unreference drops p's reference count and, on reaching zero, unlinks it
// from the registry and releases its arena, mirroring
// unreference_addresspool.
func (r *Registry) Unreference(p *Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.refcount--
	if p.refcount > 0 {
		return
	}

	if r.head == p {
		r.head = p.next
	} else {
		for cur := r.head; cur != nil; cur = cur.next {
			if cur.next == p {
				cur.next = p.next
				break
			}
		}
	}
	p.leases = nil
	p.buckets = nil
}
