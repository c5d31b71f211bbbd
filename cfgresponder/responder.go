// Package cfgresponder illustrates how the address pool core is called
// from an IKEv2 CFG (configuration) exchange. It is explicitly not core:
// spec §1 carves out IKE state-machine transitions and wire serialization
// as external collaborators, and this package stands in for that caller
// with a minimal ordered-handler chain, generalized from the teacher's
// coredhcp.Server.MainHandler4/6 (run every registered handler in
// sequence, stopping early when one says so) from a DHCP OFFER/ACK packet
// to a CFG_REPLY attribute list.
package cfgresponder

import "github.com/AnandBibhuti/ikepool/connection"

// AttributeType names an IKEv2 CFG reply attribute relevant to address
// assignment (RFC 7296 §3.15.1); the set used here is restricted to what
// AddressAssignmentHandler produces.
type AttributeType int

const (
	AttrInternalIP4Address AttributeType = iota
	AttrInternalIP6Address
)

// Attribute is one CFG_REPLY attribute.
type Attribute struct {
	Type  AttributeType
	Value []byte
}

// FailureCode is the CFG-exchange-level outcome when a handler can't
// proceed.
type FailureCode int

const (
	FailureNone FailureCode = iota
	// FailureInternalAddressFailure corresponds to IKEv2's
	// INTERNAL_ADDRESS_FAILURE notification.
	FailureInternalAddressFailure
)

// Reply accumulates CFG_REPLY attributes as handlers run.
type Reply struct {
	Attributes []Attribute
	Failure    FailureCode
}

// Handler runs one step of reply construction for a connection. Returning
// stop true ends the chain early.
type Handler func(c *connection.Connection, reply *Reply) (out *Reply, stop bool)

// Responder runs an ordered chain of Handlers to build a CFG_REPLY.
type Responder struct {
	Handlers []Handler
}

// Respond runs every handler against c in order, returning the accumulated
// reply. Handlers after one that sets stop never run.
func (r *Responder) Respond(c *connection.Connection) *Reply {
	reply := &Reply{}
	var stop bool
	for _, h := range r.Handlers {
		reply, stop = h(c, reply)
		if stop {
			break
		}
	}
	return reply
}
