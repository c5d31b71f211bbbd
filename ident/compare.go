package ident

import (
	"bytes"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
)

var foldCase = cases.Fold()

// Same reports whether a and b are the same identity, per the original's
// same_id: a None on either side matches anything; otherwise the kinds must
// agree and the payload must compare equal under the kind's own rules
// (case-insensitive, trailing-dot-insensitive for FQDN/user-FQDN; byte-exact
// for key IDs; bitwise for addresses; structural for DNs).
func Same(a, b *ID) bool {
	if a.Kind == KindNone || b.Kind == KindNone {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindIPv4Addr, KindIPv6Addr:
		return a.Addr.Equal(b.Addr)
	case KindFQDN, KindUserFQDN:
		return sameName(a.Name, b.Name)
	case KindFromCert, KindDERASN1DN:
		// FromCert is treated as a DN here, per the original's same_id
		// (it falls through into the DN comparison arm).
		return SameDN(a.Name, b.Name) || SameDNAnyOrder(a.Name, b.Name)
	case KindKeyID:
		return bytes.Equal(a.Name, b.Name)
	default:
		return false
	}
}

// sameName compares FQDN/user-FQDN names the way the original does: ASCII
// case-insensitively, ignoring any trailing '.' characters. Names are additionally
// normalized through IDNA ToASCII before folding, so punycode and Unicode
// spellings of the same hostname compare equal -- a capability the original,
// lacking any Unicode-aware comparison, did not have; kept confined to this
// comparison path so the identity's stored Name bytes are never rewritten.
func sameName(a, b []byte) bool {
	na := normalizeName(string(a))
	nb := normalizeName(string(b))
	return na == nb
}

func normalizeName(s string) string {
	s = strings.TrimRight(s, ".")
	if ascii, err := idna.Lookup.ToASCII(s); err == nil {
		s = ascii
	}
	return foldCase.String(s)
}

// Match reports whether pattern matches subject, and how many wildcards were
// consumed doing so (0 = exact, higher = weaker), per the original's
// match_id. A None pattern matches anything at MaxWildcards strength. A DN
// pattern defers to MatchDNAnyOrderWild. Anything else is a Same comparison
// at zero wildcards -- match_id has no partial-wildcard concept outside DNs.
func Match(pattern, subject *ID) (matched bool, wildcards int) {
	if pattern.Kind == KindNone {
		return true, MaxWildcards
	}
	if pattern.Kind != subject.Kind {
		return false, 0
	}
	if pattern.Kind == KindDERASN1DN {
		return MatchDNAnyOrderWild(pattern.Name, subject.Name)
	}
	return Same(pattern, subject), 0
}

// CountWildcards returns the match strength id would contribute as a
// pattern, without needing a subject: MaxWildcards for None, the DN's
// wildcard-RDN count for DNs, 0 otherwise. Mirrors id_count_wildcards.
func CountWildcards(id *ID) int {
	switch id.Kind {
	case KindNone:
		return MaxWildcards
	case KindDERASN1DN:
		return CountWildcardsDN(id.Name)
	default:
		return 0
	}
}
