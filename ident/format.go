package ident

import "fmt"

// Format renders id back to text in the same style atoid()/jam_id() use for
// logging and config round-trips. It is the inverse of Parse for every kind
// except KindNone ("(none)") and KindNull ("ID_NULL"), whose outputs Parse
// does not accept, and an unspecified IP address ("%any"), which Parse reads
// back as KindNone.
func Format(id *ID) string {
	switch id.Kind {
	case KindFromCert:
		return "%fromcert"
	case KindNone:
		return "(none)"
	case KindNull:
		return "ID_NULL"
	case KindIPv4Addr, KindIPv6Addr:
		if id.Addr.IsUnspecified() {
			return "%any"
		}
		return id.Addr.String()
	case KindFQDN:
		return "@" + string(id.Name)
	case KindUserFQDN:
		return string(id.Name)
	case KindDERASN1DN:
		text, err := DNToText(id.Name)
		if err != nil {
			return fmt.Sprintf("(malformed DN: %v)", err)
		}
		return text
	case KindKeyID:
		return "@#0x" + fmt.Sprintf("%x", id.Name)
	default:
		return "(unknown id kind)"
	}
}

// String implements fmt.Stringer so IDs print legibly in logs.
func (id ID) String() string {
	return Format(&id)
}
