package geoip

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned when the resolver is not initialized.
var ErrUnavailable = errors.New("geoip resolver unavailable")

const maxCachedAddrs = 4096

// Resolver maps client addresses to ISO country codes using a MaxMind
// GeoLite2/GeoIP2 country database. Results are cached per address.
type Resolver struct {
	reader *geoip2.Reader

	mu    sync.RWMutex
	cache map[netip.Addr]string
}

// Open loads the database at path. An empty path yields a nil resolver,
// which callers treat as "no lookup".
func Open(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader, cache: make(map[netip.Addr]string)}, nil
}

// CountryCode returns the ISO country code for ip, or "" for private and
// unknown addresses.
func (r *Resolver) CountryCode(ip string) (string, error) {
	if r == nil || r.reader == nil {
		return "", ErrUnavailable
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return "", nil
	}

	r.mu.RLock()
	code, ok := r.cache[addr]
	r.mu.RUnlock()
	if ok {
		return code, nil
	}

	record, err := r.reader.Country(net.IP(addr.AsSlice()))
	if err != nil {
		return "", fmt.Errorf("geoip: lookup country: %w", err)
	}
	if record != nil {
		code = strings.ToUpper(record.Country.IsoCode)
	}

	r.mu.Lock()
	if len(r.cache) >= maxCachedAddrs {
		r.cache = make(map[netip.Addr]string)
	}
	r.cache[addr] = code
	r.mu.Unlock()
	return code, nil
}

// Lookup adapts the resolver to the I18N middleware. A nil resolver yields
// a nil lookup.
func (r *Resolver) Lookup() func(ip string) (string, error) {
	if r == nil {
		return nil
	}
	return r.CountryCode
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
