package analysis

import (
	"net/netip"
	"strings"
)

// AddressClass says whether an address is worth alerting on.
type AddressClass int

const (
	Private AddressClass = iota
	Public
)

func (c AddressClass) String() string {
	if c == Public {
		return "public"
	}
	return "private"
}

// Reserved IPv4 ranges that never produce an alert.
var privateV4 = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
}

// Link-local and site-local (fec0::/10, deprecated by RFC 3879 but still
// excluded). Prefix matching never unmaps ::ffff:a.b.c.d.
var privateV6 = []netip.Prefix{
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fec0::/10"),
}

// Classify decides whether addr is routable on the open internet.
//
// IPv6 handling is a narrow heuristic: link-local and site-local are private,
// and so is anything whose text form starts with "fd". fc00::/8 is NOT
// treated as unique-local, and IPv4-mapped addresses are judged as IPv6.
func Classify(addr netip.Addr) AddressClass {
	if !addr.IsValid() {
		return Private
	}

	if addr.Is4() {
		for _, p := range privateV4 {
			if p.Contains(addr) {
				return Private
			}
		}
		return Public
	}

	unzoned := addr.WithZone("")
	for _, p := range privateV6 {
		if p.Contains(unzoned) {
			return Private
		}
	}
	if strings.HasPrefix(addr.String(), "fd") {
		return Private
	}
	return Public
}

// IsPublic is shorthand for Classify(addr) == Public.
func IsPublic(addr netip.Addr) bool {
	return Classify(addr) == Public
}
