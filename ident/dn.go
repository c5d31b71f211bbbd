package ident

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DN decoding and formatting use the standard library's encoding/asn1 and
// crypto/x509/pkix as the "external ASN.1/X.509 decoder" spec §6 calls for.
// No third-party ASN.1/LDAP-DN package appears anywhere in the example pack
// this module was grounded on; see DESIGN.md.

// oidByShortName maps the LDAP/OpenSSL short attribute names accepted by
// ParseDNText to their OIDs (RFC 4519 / RFC 5280 attribute types).
var oidByShortName = map[string]asn1.ObjectIdentifier{
	"CN":           {2, 5, 4, 3},
	"SN":           {2, 5, 4, 4},
	"C":            {2, 5, 4, 6},
	"L":            {2, 5, 4, 7},
	"ST":           {2, 5, 4, 8},
	"STREET":       {2, 5, 4, 9},
	"O":            {2, 5, 4, 10},
	"OU":           {2, 5, 4, 11},
	"SERIALNUMBER": {2, 5, 4, 5},
	"POSTALCODE":   {2, 5, 4, 17},
	"DC":           {0, 9, 2342, 19200300, 100, 1, 25},
	"UID":          {0, 9, 2342, 19200300, 100, 1, 1},
	"E":            {1, 2, 840, 113549, 1, 9, 1},
	"EMAILADDRESS": {1, 2, 840, 113549, 1, 9, 1},
}

// ParseDNText converts an LDAP/OpenSSL "x509 -subject" style textual DN
// (e.g. "CN=Example,O=Acme") into its ASN.1 DER encoding, as atodn() does in
// the original. Attribute/value pairs are read most-specific-first, as
// written, and stored so that the resulting RDNSequence reads
// least-specific-first (RFC 5280 Name encoding order) -- the inverse of the
// written order -- so that formatting it back out via RDNSequence.String
// round-trips to the original text.
func ParseDNText(text string) ([]byte, error) {
	rdnTexts, err := splitUnescaped(text, ',')
	if err != nil {
		return nil, err
	}
	if len(rdnTexts) == 0 {
		return nil, fmt.Errorf("empty DN")
	}

	seq := make(pkix.RDNSequence, len(rdnTexts))
	for i, rdnText := range rdnTexts {
		rdn, err := parseRDNText(rdnText)
		if err != nil {
			return nil, err
		}
		// reverse position: most-specific-first text -> least-specific-first DER
		seq[len(rdnTexts)-1-i] = rdn
	}

	return asn1.Marshal(seq)
}

func parseRDNText(rdnText string) (pkix.RelativeDistinguishedNameSET, error) {
	avaTexts, err := splitUnescaped(rdnText, '+')
	if err != nil {
		return nil, err
	}
	if len(avaTexts) == 0 {
		return nil, fmt.Errorf("empty RDN in DN")
	}
	rdn := make(pkix.RelativeDistinguishedNameSET, len(avaTexts))
	for i, avaText := range avaTexts {
		ava, err := parseAVAText(avaText)
		if err != nil {
			return nil, err
		}
		rdn[i] = ava
	}
	return rdn, nil
}

func parseAVAText(avaText string) (pkix.AttributeTypeAndValue, error) {
	eq := indexUnescaped(avaText, '=')
	if eq < 0 {
		return pkix.AttributeTypeAndValue{}, fmt.Errorf("missing '=' in DN attribute %q", avaText)
	}
	attr := strings.TrimSpace(avaText[:eq])
	value := unescapeDNValue(strings.TrimSpace(avaText[eq+1:]))

	oid, ok := oidByShortName[strings.ToUpper(attr)]
	if !ok {
		var err error
		oid, err = parseDottedOID(attr)
		if err != nil {
			return pkix.AttributeTypeAndValue{}, fmt.Errorf("unknown DN attribute %q", attr)
		}
	}
	return pkix.AttributeTypeAndValue{Type: oid, Value: value}, nil
}

func parseDottedOID(s string) (asn1.ObjectIdentifier, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("not a dotted OID: %q", s)
	}
	oid := make(asn1.ObjectIdentifier, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("not a dotted OID: %q", s)
		}
		oid[i] = n
	}
	return oid, nil
}

// splitUnescaped splits s on sep, honoring backslash escapes and
// double-quoted spans the way RFC 4514 DN strings do.
func splitUnescaped(s string, sep byte) ([]string, error) {
	var parts []string
	var cur strings.Builder
	quoted := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			cur.WriteByte(c)
			escaped = true
		case c == '"':
			cur.WriteByte(c)
			quoted = !quoted
		case c == sep && !quoted:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if escaped {
		return nil, fmt.Errorf("dangling escape in DN %q", s)
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in DN %q", s)
	}
	parts = append(parts, cur.String())
	return parts, nil
}

func indexUnescaped(s string, target byte) int {
	escaped := false
	quoted := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == target && !quoted:
			return i
		}
	}
	return -1
}

func unescapeDNValue(v string) string {
	v = strings.Trim(v, "\"")
	var out strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] == '\\' && i+1 < len(v) {
			i++
			out.WriteByte(v[i])
			continue
		}
		out.WriteByte(v[i])
	}
	return out.String()
}

// DNToText decodes a DER-encoded DN and formats it per RFC 4514 (the format
// NSS's dntoa()/CERT_AsciiToName() round trip aims for in the original).
func DNToText(der []byte) (string, error) {
	var seq pkix.RDNSequence
	if _, err := asn1.Unmarshal(der, &seq); err != nil {
		return "", err
	}
	return seq.String(), nil
}

func decodeRDNSequence(der []byte) (pkix.RDNSequence, error) {
	var seq pkix.RDNSequence
	rest, err := asn1.Unmarshal(der, &seq)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing garbage after DN")
	}
	return seq, nil
}

// avaValueString returns the AVA's decoded value as a comparable string,
// the same way RDNSequence.String formats it.
func avaValueString(ava pkix.AttributeTypeAndValue) string {
	return fmt.Sprint(ava.Value)
}

// hexDN is used by the "@~<hex>" identity form: it is simply hex-decoded
// into the raw DER bytes, per spec §4.1 step 6.
func hexDN(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// SameDN reports whether two DER-encoded DNs are identical RDN-sequences in
// the same order, byte-for-byte on each AVA value (no wildcards). This is
// the "for efficiency" fast path spec §4.3 suggests trying first: a raw
// bytes.Equal on the DER would also work when both sides were encoded by
// ParseDNText, but comparing decoded RDNs tolerates different-but-equivalent
// encodings of the same attributes.
func SameDN(a, b []byte) bool {
	seqA, errA := decodeRDNSequence(a)
	seqB, errB := decodeRDNSequence(b)
	if errA != nil || errB != nil {
		return false
	}
	if len(seqA) != len(seqB) {
		return false
	}
	for i := range seqA {
		if !sameRDN(seqA[i], seqB[i]) {
			return false
		}
	}
	return true
}

func sameRDN(a, b pkix.RelativeDistinguishedNameSET) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Type.Equal(b[i].Type) {
			return false
		}
		if avaValueString(a[i]) != avaValueString(b[i]) {
			return false
		}
	}
	return true
}

// SameDNAnyOrder reports whether two DER-encoded DNs contain the same set of
// RDNs, each RDN containing the same set of AVAs, regardless of order.
// Mirrors the original's same_dn_any_order: no wildcards, every RDN on each
// side must find an exact counterpart on the other.
func SameDNAnyOrder(a, b []byte) bool {
	matched, _ := matchDNAnyOrder(a, b, false)
	return matched
}

// MatchDNAnyOrderWild reports whether pattern matches subject, where RDNs in
// pattern whose single AVA value is the literal wildcard "*" match any RDN
// in subject holding the same attribute type, and returns how many wildcard
// RDNs were used (spec §4.3's "wildcard count" used to rank match
// specificity, mirroring the original's match_dn_any_order_wild /
// id_count_wildcards pairing). A higher count is a weaker (less specific)
// match.
func MatchDNAnyOrderWild(pattern, subject []byte) (matched bool, wildcards int) {
	return matchDNAnyOrder(pattern, subject, true)
}

func matchDNAnyOrder(pattern, subject []byte, allowWild bool) (bool, int) {
	patSeq, err := decodeRDNSequence(pattern)
	if err != nil {
		return false, 0
	}
	subSeq, err := decodeRDNSequence(subject)
	if err != nil {
		return false, 0
	}
	if len(patSeq) != len(subSeq) {
		return false, 0
	}

	used := make([]bool, len(subSeq))
	wildcards := 0
	for _, prdn := range patSeq {
		found := false
		for j, srdn := range subSeq {
			if used[j] {
				continue
			}
			ok, isWild := matchRDN(prdn, srdn, allowWild)
			if !ok {
				continue
			}
			used[j] = true
			found = true
			if isWild {
				wildcards++
			}
			break
		}
		if !found {
			return false, 0
		}
	}
	return true, wildcards
}

// matchRDN reports whether pattern RDN p matches subject RDN s: same number
// of AVAs, each with a matching type, and either an exact value match or (if
// allowWild) a literal "*" pattern value.
func matchRDN(p, s pkix.RelativeDistinguishedNameSET, allowWild bool) (matched bool, usedWildcard bool) {
	if len(p) != len(s) {
		return false, false
	}
	used := make([]bool, len(s))
	wild := false
	for _, pava := range p {
		found := false
		for j, sava := range s {
			if used[j] || !pava.Type.Equal(sava.Type) {
				continue
			}
			pv := avaValueString(pava)
			if allowWild && pv == "*" {
				used[j] = true
				found = true
				wild = true
				break
			}
			if pv == avaValueString(sava) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false, false
		}
	}
	return true, wild
}

// CountWildcardsDN returns the number of wildcard RDNs a pattern DN would
// contribute to a MatchDNAnyOrderWild match against itself, i.e. the number
// of RDNs whose sole AVA value is the literal "*". Mirrors the original's
// dn_count_wildcards.
func CountWildcardsDN(pattern []byte) int {
	seq, err := decodeRDNSequence(pattern)
	if err != nil {
		return 0
	}
	n := 0
	for _, rdn := range seq {
		if len(rdn) == 1 && avaValueString(rdn[0]) == "*" {
			n++
		}
	}
	return n
}
