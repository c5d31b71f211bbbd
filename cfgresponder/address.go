package cfgresponder

import "github.com/AnandBibhuti/ikepool/connection"

// AddressAssignmentHandler leases an address from c.Pool and appends it to
// the reply as the sole INTERNAL_IPv4/6_ADDRESS attribute, or sets
// FailureInternalAddressFailure and stops the chain if the pool is
// exhausted.
//
// Per spec §9's open question, lease_an_address's returned address is the
// only place the assignment is recorded here -- this handler does not also
// poke it into some other side channel the way the source's responder
// additionally (and suspiciously) assigns to spd.that.client.addr.
func AddressAssignmentHandler(c *connection.Connection, reply *Reply) (*Reply, bool) {
	addr, err := c.AcquireLease()
	if err != nil {
		reply.Failure = FailureInternalAddressFailure
		return reply, true
	}

	attrType := AttrInternalIP4Address
	if addr.To4() == nil {
		attrType = AttrInternalIP6Address
	}
	reply.Attributes = append(reply.Attributes, Attribute{Type: attrType, Value: addr})
	return reply, false
}
