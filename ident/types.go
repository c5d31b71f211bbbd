// Package ident implements the IKE peer identity value (RFC 2407 DOI
// §4.6.2.1): a tagged variant over certificate-subject, wildcard, NULL,
// IPv4/IPv6 address, FQDN, user-FQDN, ASN.1 DN and opaque key-ID forms,
// with textual parsing, canonical formatting, equality and wildcard-aware
// matching.
package ident

import (
	"net"
)

// Kind tags which variant of an ID is populated.
type Kind int

const (
	// KindFromCert means "take the Subject from the peer's certificate at
	// authentication time"; it carries no payload of its own.
	KindFromCert Kind = iota
	// KindNone is the wildcard/unspecified identity; it matches anything.
	KindNone
	// KindNull is the RFC 7619 NULL authentication identity.
	KindNull
	// KindIPv4Addr carries an IPv4 address in Addr.
	KindIPv4Addr
	// KindIPv6Addr carries an IPv6 address in Addr.
	KindIPv6Addr
	// KindFQDN carries a DNS-style name in Name, without a leading '@'.
	KindFQDN
	// KindUserFQDN carries a "user@domain" name in Name, '@' retained.
	KindUserFQDN
	// KindDERASN1DN carries a raw ASN.1 DER-encoded Distinguished Name in Name.
	KindDERASN1DN
	// KindKeyID carries an opaque binary key identifier in Name.
	KindKeyID
)

// String names a Kind the way the original implementation's log lines do.
func (k Kind) String() string {
	switch k {
	case KindFromCert:
		return "ID_FROMCERT"
	case KindNone:
		return "ID_NONE"
	case KindNull:
		return "ID_NULL"
	case KindIPv4Addr:
		return "ID_IPV4_ADDR"
	case KindIPv6Addr:
		return "ID_IPV6_ADDR"
	case KindFQDN:
		return "ID_FQDN"
	case KindUserFQDN:
		return "ID_USER_FQDN"
	case KindDERASN1DN:
		return "ID_DER_ASN1_DN"
	case KindKeyID:
		return "ID_KEY_ID"
	default:
		return "ID_UNKNOWN"
	}
}

// MaxWildcards is the match-strength the None identity (or any identity
// matching under it) is reported with; a higher value than any concrete DN
// can produce by counting literal "*" RDN values.
const MaxWildcards = 15

// ID is the tagged-variant identity value. Which of Addr/Name is meaningful
// depends on Kind; see the package doc and spec §3's field table.
//
// Name may, until Unshare is called, alias memory owned by the caller (for
// example a slice an ID was built from directly; Parse always returns a
// fresh copy). After
// Unshare, Name is a private copy and must eventually be released — though
// in Go that's just letting the GC reclaim it; Free exists for symmetry with
// the original's explicit free and to keep the "this is now inert" point
// explicit in code that mirrors the source's lifecycle.
type ID struct {
	Kind Kind
	Addr net.IP
	Name []byte
}

// None is the wildcard identity, equivalent to C's empty_id.
var None = ID{Kind: KindNone}

// Any reports whether id is a "match anything" identity: the wildcard Kind,
// or an IP address identity holding the unspecified (all-zeros) address.
func Any(id *ID) bool {
	switch id.Kind {
	case KindNone:
		return true
	case KindIPv4Addr, KindIPv6Addr:
		return id.Addr.IsUnspecified()
	default:
		return false
	}
}

// Unshare makes id.Name an owned copy of its current bytes, if the kind
// carries a name. Must be called before the identity outlives a caller-owned
// buffer its Name aliases. It is always safe
// to call, and idempotent.
func (id *ID) Unshare() {
	switch id.Kind {
	case KindFQDN, KindUserFQDN, KindDERASN1DN, KindKeyID:
		id.Name = append([]byte(nil), id.Name...)
	case KindFromCert, KindNone, KindNull, KindIPv4Addr, KindIPv6Addr:
		// no name payload
	}
}

// Free clears id's payload, mirroring the original's free_id_content. In Go
// this has no effect beyond making reuse-after-free bugs visible in tests;
// it exists so callers that translate the source 1:1 have somewhere to put
// the call.
func Free(id *ID) {
	id.Name = nil
	id.Addr = nil
}

// Duplicate makes dst a deep, owned copy of src, per spec §3's "created by
// parse or constructor; ... destroyed by free_id_content" lifecycle.
func Duplicate(dst *ID, src *ID) {
	dst.Kind = src.Kind
	dst.Addr = append(net.IP(nil), src.Addr...)
	dst.Name = append([]byte(nil), src.Name...)
}

// IsIPAddr reports whether id's kind carries an IP address.
func IsIPAddr(id *ID) bool {
	return id.Kind == KindIPv4Addr || id.Kind == KindIPv6Addr
}
