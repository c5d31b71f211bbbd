package addresspool

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallDoesNotReference(t *testing.T) {
	r := &Registry{}
	pool, err := r.Install(testRange(t, "192.0.2.0", "192.0.2.3"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), pool.refcount)
}

func TestReferenceUnreferenceTearsDownOnLastDrop(t *testing.T) {
	r := &Registry{}
	pool, err := r.Install(testRange(t, "192.0.2.0", "192.0.2.3"))
	require.NoError(t, err)

	r.Reference(pool)
	r.Reference(pool)
	assert.Equal(t, uint32(2), pool.refcount)
	assert.Equal(t, 1, countPools(r))

	r.Unreference(pool)
	assert.Equal(t, uint32(1), pool.refcount)
	assert.Equal(t, 1, countPools(r))

	r.Unreference(pool)
	assert.Equal(t, 0, countPools(r))
}

func TestUnreferenceUnlinksMiddleOfList(t *testing.T) {
	r := &Registry{}
	p1, err := r.Install(testRange(t, "192.0.2.0", "192.0.2.3"))
	require.NoError(t, err)
	p2, err := r.Install(testRange(t, "192.0.3.0", "192.0.3.3"))
	require.NoError(t, err)
	p3, err := r.Install(testRange(t, "192.0.4.0", "192.0.4.3"))
	require.NoError(t, err)

	r.Reference(p1)
	r.Reference(p2)
	r.Reference(p3)
	assert.Equal(t, 3, countPools(r))

	r.Unreference(p2)
	assert.Equal(t, 2, countPools(r))

	found, err := r.Find(Range{Start: net.ParseIP("192.0.2.0"), End: net.ParseIP("192.0.2.3")})
	require.NoError(t, err)
	assert.Same(t, p1, found)

	found, err = r.Find(Range{Start: net.ParseIP("192.0.4.0"), End: net.ParseIP("192.0.4.3")})
	require.NoError(t, err)
	assert.Same(t, p3, found)
}
