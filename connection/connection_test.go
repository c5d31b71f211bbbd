package connection

import (
	"net"
	"testing"

	"github.com/AnandBibhuti/ikepool/addresspool"
	"github.com/AnandBibhuti/ikepool/ident"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndReleaseLease(t *testing.T) {
	r := &addresspool.Registry{}
	pool, err := r.Install(addresspool.Range{
		Start: net.ParseIP("192.0.2.0"),
		End:   net.ParseIP("192.0.2.1"),
	})
	require.NoError(t, err)

	peer, err := ident.Parse("user-a@example", false)
	require.NoError(t, err)

	c := &Connection{PeerID: &peer, AuthBy: addresspool.AuthRSASig, UniqueIDs: true}
	c.AttachPool(r, pool)
	addr, err := c.AcquireLease()
	require.NoError(t, err)
	assert.True(t, c.HasLease)
	assert.Equal(t, addr.String(), c.ClientAddr.String())

	c.ReleaseLease()
	assert.False(t, c.HasLease)
	c.DetachPool(r)
	assert.Nil(t, c.Pool)
}

func TestAcquireLeaseTwicePanics(t *testing.T) {
	r := &addresspool.Registry{}
	pool, err := r.Install(addresspool.Range{
		Start: net.ParseIP("192.0.2.0"),
		End:   net.ParseIP("192.0.2.1"),
	})
	require.NoError(t, err)
	peer, err := ident.Parse("user-a@example", false)
	require.NoError(t, err)

	c := &Connection{PeerID: &peer, AuthBy: addresspool.AuthRSASig, UniqueIDs: true}
	c.AttachPool(r, pool)
	_, err = c.AcquireLease()
	require.NoError(t, err)
	assert.Panics(t, func() { c.AcquireLease() })
}

func TestDetachPoolWhileLeaseHeldPanics(t *testing.T) {
	r := &addresspool.Registry{}
	pool, err := r.Install(addresspool.Range{
		Start: net.ParseIP("192.0.2.0"),
		End:   net.ParseIP("192.0.2.1"),
	})
	require.NoError(t, err)
	peer, err := ident.Parse("user-a@example", false)
	require.NoError(t, err)

	c := &Connection{PeerID: &peer, AuthBy: addresspool.AuthRSASig, UniqueIDs: true}
	c.AttachPool(r, pool)
	_, err = c.AcquireLease()
	require.NoError(t, err)
	assert.Panics(t, func() { c.DetachPool(r) })
}

func TestAttachPoolTwicePanics(t *testing.T) {
	r := &addresspool.Registry{}
	pool, err := r.Install(addresspool.Range{
		Start: net.ParseIP("192.0.2.0"),
		End:   net.ParseIP("192.0.2.1"),
	})
	require.NoError(t, err)

	c := &Connection{UniqueIDs: true}
	c.AttachPool(r, pool)
	assert.Panics(t, func() { c.AttachPool(r, pool) })
}
