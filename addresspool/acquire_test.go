package addresspool

import (
	"net"
	"testing"

	"github.com/AnandBibhuti/ikepool/ident"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRange(t *testing.T, start, end string) Range {
	t.Helper()
	return Range{Start: net.ParseIP(start), End: net.ParseIP(end)}
}

func mustID(t *testing.T, text string) *ident.ID {
	t.Helper()
	id, err := ident.Parse(text, false)
	require.NoError(t, err)
	return &id
}

// S1: a pool of 3 addresses hands out sequential addresses then exhausts.
func TestLeaseAnAddress_S1_SequentialThenExhausted(t *testing.T) {
	r := &Registry{}
	pool, err := r.Install(testRange(t, "192.0.2.10", "192.0.2.12"))
	require.NoError(t, err)

	a := mustID(t, "user-a@example")
	b := mustID(t, "user-b@example")
	c := mustID(t, "user-c@example")
	d := mustID(t, "user-d@example")

	ip, err := pool.LeaseAnAddress(a, AuthRSASig, true)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.10", ip.String())

	ip, err = pool.LeaseAnAddress(b, AuthRSASig, true)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.11", ip.String())

	ip, err = pool.LeaseAnAddress(c, AuthRSASig, true)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.12", ip.String())

	_, err = pool.LeaseAnAddress(d, AuthRSASig, true)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

// S2: releasing a reusable lease and re-requesting it by the same identity
// recovers the same address (lingering reuse).
func TestLeaseAnAddress_S2_ReuseViaLingering(t *testing.T) {
	r := &Registry{}
	pool, err := r.Install(testRange(t, "192.0.2.10", "192.0.2.12"))
	require.NoError(t, err)

	a := mustID(t, "user-a@example")
	b := mustID(t, "user-b@example")
	c := mustID(t, "user-c@example")

	ipA, err := pool.LeaseAnAddress(a, AuthRSASig, true)
	require.NoError(t, err)
	_, err = pool.LeaseAnAddress(b, AuthRSASig, true)
	require.NoError(t, err)
	_, err = pool.LeaseAnAddress(c, AuthRSASig, true)
	require.NoError(t, err)

	pool.RelLeaseAddr(ipA)

	ip, err := pool.LeaseAnAddress(a, AuthRSASig, true)
	require.NoError(t, err)
	assert.Equal(t, ipA.String(), ip.String())
	assert.Equal(t, uint32(3), pool.Stats().NrInUse)
}

// S3: releasing every lease lingers all three at the free list; a new
// identity steals the earliest-released slot (head of free list), evicting
// its old binding.
func TestLeaseAnAddress_S3_StealFromLingering(t *testing.T) {
	r := &Registry{}
	pool, err := r.Install(testRange(t, "192.0.2.10", "192.0.2.12"))
	require.NoError(t, err)

	a := mustID(t, "user-a@example")
	b := mustID(t, "user-b@example")
	c := mustID(t, "user-c@example")
	x := mustID(t, "user-x@example")

	ipA, err := pool.LeaseAnAddress(a, AuthRSASig, true)
	require.NoError(t, err)
	ipB, err := pool.LeaseAnAddress(b, AuthRSASig, true)
	require.NoError(t, err)
	ipC, err := pool.LeaseAnAddress(c, AuthRSASig, true)
	require.NoError(t, err)

	pool.RelLeaseAddr(ipA)
	pool.RelLeaseAddr(ipB)
	pool.RelLeaseAddr(ipC)
	assert.Equal(t, uint32(3), pool.Stats().NrFree)

	ip, err := pool.LeaseAnAddress(x, AuthRSASig, true)
	require.NoError(t, err)
	assert.Equal(t, ipA.String(), ip.String())

	// user-a's binding is gone: requesting it again must land on a
	// different slot (stealing the next lingering one), not recover ipA.
	ip2, err := pool.LeaseAnAddress(a, AuthRSASig, true)
	require.NoError(t, err)
	assert.NotEqual(t, ipA.String(), ip2.String())
}

// S6: a partially overlapping install is rejected and the registry is left
// unchanged.
func TestInstall_S6_OverlapRejected(t *testing.T) {
	r := &Registry{}
	_, err := r.Install(testRange(t, "10.0.0.0", "10.0.0.255"))
	require.NoError(t, err)

	_, err = r.Install(testRange(t, "10.0.0.128", "10.0.1.127"))
	require.Error(t, err)
	var overlapErr *PoolOverlapError
	assert.ErrorAs(t, err, &overlapErr)

	assert.Equal(t, 1, countPools(r))
}

func TestInstall_ExactMatchReused(t *testing.T) {
	r := &Registry{}
	p1, err := r.Install(testRange(t, "10.0.0.0", "10.0.0.255"))
	require.NoError(t, err)
	p2, err := r.Install(testRange(t, "10.0.0.0", "10.0.0.255"))
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, countPools(r))
}

func TestInstall_DisjointRangesBothInstall(t *testing.T) {
	r := &Registry{}
	_, err := r.Install(testRange(t, "10.0.0.0", "10.0.0.255"))
	require.NoError(t, err)
	_, err = r.Install(testRange(t, "10.0.1.0", "10.0.1.255"))
	require.NoError(t, err)
	assert.Equal(t, 2, countPools(r))
}

func TestNonReusableAuthNeverRecovers(t *testing.T) {
	r := &Registry{}
	pool, err := r.Install(testRange(t, "192.0.2.10", "192.0.2.11"))
	require.NoError(t, err)

	a := mustID(t, "user-a@example")
	ipA, err := pool.LeaseAnAddress(a, AuthPSK, true)
	require.NoError(t, err)
	pool.RelLeaseAddr(ipA)

	// PSK auth is never reusable, so this is a fresh allocation, not a
	// recovered lingering lease -- but with only one other free slot it
	// still lands back at the head of a now-single-entry free list.
	ip2, err := pool.LeaseAnAddress(a, AuthPSK, true)
	require.NoError(t, err)
	assert.Equal(t, ipA.String(), ip2.String())
	assert.Equal(t, uint32(0), pool.Stats().NrReusable)
}

func TestLeaseConservationInvariant(t *testing.T) {
	r := &Registry{}
	pool, err := r.Install(testRange(t, "192.0.2.0", "192.0.2.7"))
	require.NoError(t, err)

	var leased []net.IP
	for i := 0; i < 5; i++ {
		id := mustID(t, "user"+string(rune('a'+i))+"@example")
		ip, err := pool.LeaseAnAddress(id, AuthRSASig, true)
		require.NoError(t, err)
		leased = append(leased, ip)
	}
	stats := pool.Stats()
	assert.Equal(t, stats.NrLeases, stats.NrFree+stats.NrInUse)
	assert.LessOrEqual(t, stats.NrLeases, stats.Size)

	for _, ip := range leased {
		pool.RelLeaseAddr(ip)
	}
	stats = pool.Stats()
	assert.Equal(t, uint32(0), stats.NrInUse)
	assert.Equal(t, stats.NrLeases, stats.NrFree)
}

func countPools(r *Registry) int {
	n := 0
	for p := r.head; p != nil; p = p.next {
		n++
	}
	return n
}
