package web

import (
	"net"
	"net/http"
	"strings"
)

// EditAccess decides if a request may change records. Can depend on IP
// address, cookies etc.
type EditAccess struct {
	editNets       []*net.IPNet // IP Networks that are allowed to edit
	trustedProxies []*net.IPNet // Reverse proxies that may set X-Forwarded-For
}

func NewEditAccess(editNets []*net.IPNet, trustedProxies []*net.IPNet) EditAccess {
	return EditAccess{editNets: editNets, trustedProxies: trustedProxies}
}

func contains(nets []*net.IPNet, ip net.IP) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP is the peer address, unless the peer is a trusted proxy. Then the
// forwarded chain is walked from the right and the first hop that is not a
// trusted proxy is the client.
func (a EditAccess) clientIP(r *http.Request) net.IP {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	ip := net.ParseIP(addr)
	if ip == nil || !contains(a.trustedProxies, ip) {
		return ip
	}
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		h := strings.TrimSpace(hops[i])
		if h == "" {
			continue
		}
		hop := net.ParseIP(h)
		if hop == nil {
			return nil
		}
		ip = hop
		if !contains(a.trustedProxies, hop) {
			break
		}
	}
	return ip
}

func (a EditAccess) EditAllowed(r *http.Request) bool {
	if len(a.editNets) == 0 {
		return true // No restrictions.
	}
	ip := a.clientIP(r)
	return ip != nil && contains(a.editNets, ip)
}
