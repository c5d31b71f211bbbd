package cfgresponder

import (
	"net"
	"testing"

	"github.com/AnandBibhuti/ikepool/addresspool"
	"github.com/AnandBibhuti/ikepool/connection"
	"github.com/AnandBibhuti/ikepool/ident"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponderAssignsAddress(t *testing.T) {
	r := &addresspool.Registry{}
	pool, err := r.Install(addresspool.Range{
		Start: net.ParseIP("192.0.2.0"),
		End:   net.ParseIP("192.0.2.0"),
	})
	require.NoError(t, err)

	peer, err := ident.Parse("user-a@example", false)
	require.NoError(t, err)
	c := &connection.Connection{PeerID: &peer, AuthBy: addresspool.AuthRSASig, UniqueIDs: true}
	c.AttachPool(r, pool)

	responder := &Responder{Handlers: []Handler{AddressAssignmentHandler}}
	reply := responder.Respond(c)

	require.Len(t, reply.Attributes, 1)
	assert.Equal(t, AttrInternalIP4Address, reply.Attributes[0].Type)
	assert.Equal(t, FailureNone, reply.Failure)

	c.ReleaseLease()
	c.DetachPool(r)
}

func TestResponderReportsExhaustion(t *testing.T) {
	r := &addresspool.Registry{}
	pool, err := r.Install(addresspool.Range{
		Start: net.ParseIP("192.0.2.0"),
		End:   net.ParseIP("192.0.2.0"),
	})
	require.NoError(t, err)

	peerA, err := ident.Parse("user-a@example", false)
	require.NoError(t, err)
	peerB, err := ident.Parse("user-b@example", false)
	require.NoError(t, err)

	responder := &Responder{Handlers: []Handler{AddressAssignmentHandler}}
	ca := &connection.Connection{PeerID: &peerA, AuthBy: addresspool.AuthRSASig, UniqueIDs: true}
	ca.AttachPool(r, pool)
	responder.Respond(ca)

	cb := &connection.Connection{PeerID: &peerB, AuthBy: addresspool.AuthRSASig, UniqueIDs: true}
	cb.AttachPool(r, pool)
	reply := responder.Respond(cb)

	assert.Equal(t, FailureInternalAddressFailure, reply.Failure)
	assert.Empty(t, reply.Attributes)
}
