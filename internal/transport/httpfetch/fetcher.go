// Package httpfetch downloads remote media over plain HTTP(S).
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gramgyan/gramgyan/internal/domain"
)

// DefaultMaxBytes caps a download at the Gemini inline payload limit.
const DefaultMaxBytes = 20 << 20

// ErrForbiddenAddress is returned when a URL resolves to a non-public address.
var ErrForbiddenAddress = errors.New("address is not publicly routable")

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Fetcher performs bounded GET requests.
type Fetcher struct {
	hc           *http.Client
	maxBytes     int64
	allowPrivate bool
}

// New creates a fetcher. Non-positive values fall back to defaults.
// Connections to loopback, private, link-local and other non-public
// addresses are refused unless WithPrivateAddrs enables them.
func New(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	f := &Fetcher{maxBytes: maxBytes}
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: f.checkAddr,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	f.hc = &http.Client{Timeout: timeout, Transport: transport}
	return f
}

// WithPrivateAddrs allows fetching from non-public addresses (local development).
func (f *Fetcher) WithPrivateAddrs(allow bool) *Fetcher {
	f.allowPrivate = allow
	return f
}

// checkAddr runs after DNS resolution, so it sees the address actually dialed.
func (f *Fetcher) checkAddr(_, address string, _ syscall.RawConn) error {
	if f.allowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || !isPublic(ip) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, host)
	}
	return nil
}

func isPublic(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsGlobalUnicast(),
		ip.IsPrivate(),
		ip.IsLoopback(),
		ip.IsLinkLocalUnicast(),
		ip.IsUnspecified(),
		ip.IsMulticast(),
		sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

// Fetch returns the body of rawURL. Non-2xx answers are *domain.DownloadError,
// other failures wrap domain.ErrDownload.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w: %w", domain.ErrInvalidInput, err)
	}

	resp, err := f.hc.Do(req)
	if err != nil {
		if errors.Is(err, ErrForbiddenAddress) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrForbiddenAddress)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, domain.NewDownloadError(resp.StatusCode, statusText(resp))
	}

	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: body of %d bytes exceeds limit of %d", domain.ErrDownload, resp.ContentLength, f.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrDownload, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds limit of %d bytes", domain.ErrDownload, f.maxBytes)
	}
	return data, nil
}

// statusText strips the numeric code from resp.Status ("404 Not Found" -> "Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}
