package ident

import (
	"encoding/hex"
	"net"
	"strings"
)

// Parse converts a textual identity, in the same grammar the original's
// atoid() accepts, into an ID. text is never retained: the returned Name is
// always a fresh copy, so the result may outlive text without (*ID).Unshare.
//
// oeOnly mirrors atoid()'s own oe_only flag: in opportunistic-encryption
// mode the daemon restricts which forms it will accept from the wire/config.
// The forms the disambiguation table below marks "(not oe_only)" are not
// recognized; such text falls through to the later rules, so a gated
// '@'-prefixed form parses as a plain FQDN and the other gated forms fail
// as IP literals.
//
// Grammar (spec §4.1):
//
//	%fromcert            -> KindFromCert                 (not oe_only)
//	%none                -> KindNone                     (not oe_only)
//	%null                -> KindNull                     (not oe_only)
//	<dn> | @<dn>         -> KindDERASN1DN, any text containing '=' (not oe_only)
//	%any | 0.0.0.0       -> KindNone
//	<ip-literal>         -> KindIPv4Addr / KindIPv6Addr, by ':' presence
//	@#<hex>              -> KindKeyID, hex-decoded         (not oe_only)
//	@~<hex>              -> KindDERASN1DN, hex-decoded DER (not oe_only)
//	@[<text>]            -> KindKeyID, raw text between the brackets (not oe_only)
//	@<name>              -> KindFQDN
//	<name>@<rest>        -> KindUserFQDN, '@' retained
func Parse(text string, oeOnly bool) (ID, error) {
	if !oeOnly {
		switch text {
		case "%fromcert":
			return ID{Kind: KindFromCert}, nil
		case "%none":
			return ID{Kind: KindNone}, nil
		case "%null":
			return ID{Kind: KindNull}, nil
		}
	}

	if !oeOnly && strings.Contains(text, "=") {
		dnText := strings.TrimPrefix(text, "@")
		der, err := ParseDNText(dnText)
		if err != nil {
			return ID{}, parseErrorf(text, "invalid DN: %w", err)
		}
		return ID{Kind: KindDERASN1DN, Name: der}, nil
	}

	if !strings.Contains(text, "@") {
		if text == "%any" || text == "0.0.0.0" {
			return ID{Kind: KindNone}, nil
		}
		ip, err := parseIPLiteral(text)
		if err != nil {
			return ID{}, parseErrorf(text, "invalid IP address: %w", err)
		}
		kind := KindIPv4Addr
		if ip.To4() == nil {
			kind = KindIPv6Addr
		}
		return ID{Kind: kind, Addr: ip}, nil
	}

	if strings.HasPrefix(text, "@") {
		rest := text[1:]
		switch {
		case !oeOnly && strings.HasPrefix(rest, "#"):
			hexPart := strings.TrimPrefix(strings.TrimPrefix(rest[1:], "0x"), "0X")
			raw, err := hex.DecodeString(hexPart)
			if err != nil {
				return ID{}, parseErrorf(text, "invalid hex key ID: %w", err)
			}
			return ID{Kind: KindKeyID, Name: raw}, nil
		case !oeOnly && strings.HasPrefix(rest, "~"):
			der, err := hexDN(rest[1:])
			if err != nil {
				return ID{}, parseErrorf(text, "invalid hex DN: %w", err)
			}
			return ID{Kind: KindDERASN1DN, Name: der}, nil
		case !oeOnly && strings.HasPrefix(rest, "[") && strings.HasSuffix(rest, "]"):
			return ID{Kind: KindKeyID, Name: []byte(rest[1 : len(rest)-1])}, nil
		default:
			return ID{Kind: KindFQDN, Name: []byte(rest)}, nil
		}
	}

	// contains '@' but doesn't start with it: user@domain, '@' retained
	return ID{Kind: KindUserFQDN, Name: []byte(text)}, nil
}

func parseIPLiteral(s string) (net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, &net.ParseError{Type: "IP address", Text: s}
	}
	return ip, nil
}
