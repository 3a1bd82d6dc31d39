package plugin

import "net"

// NameResolver looks up the network address a hostname should proxy
// to (e.g. a static allowlist, as Router uses it). proxyctl's own
// upstream dial does not consult a NameResolver.
type NameResolver interface {
	Resolve(host string) (string, error)
}

// StaticResolver is a fixed hostname-to-address map, useful for tests
// and for a single-backend deployment that wants to reject anything
// else outright.
type StaticResolver map[string]string

func (r StaticResolver) Resolve(host string) (string, error) {
	if addr, ok := r[host]; ok {
		return addr, nil
	}
	return "", &net.DNSError{Err: "no route configured for host", Name: host}
}
