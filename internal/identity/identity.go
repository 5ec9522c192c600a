// Package identity derives a stable pseudonymous user id for this machine.
//
// The id is a name-based UUID of the first non-loopback address, so the
// same machine gets the same deck and history across runs without any
// sign-in. Callers treat the result as an opaque string.
package identity

import (
	"fmt"
	"net"
	"os"

	"github.com/google/uuid"
)

// Namespace scopes derived ids to this application.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://cardpool.local/user"))

// FromName returns the id derived from an arbitrary seed.
func FromName(seed string) string {
	return uuid.NewSHA1(Namespace, []byte(seed)).String()
}

// Derive returns override when set, otherwise an id derived from the
// machine's network address, falling back to the hostname.
func Derive(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if addr := primaryAddr(); addr != "" {
		return FromName(addr), nil
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "", fmt.Errorf("derive user id: no address and no hostname: %v", err)
	}
	return FromName(host), nil
}

func primaryAddr() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	var v6 string
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() || ipnet.IP.IsLinkLocalUnicast() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
		if v6 == "" {
			v6 = ipnet.IP.String()
		}
	}
	return v6
}
