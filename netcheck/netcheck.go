package netcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	DefaultResolver = "127.0.0.53:53"
	DefaultTimeout  = 3 * time.Second
	resolvConf      = "/etc/resolv.conf"
)

var ErrUnresolvable = errors.New("server address does not resolve")

// Result is the outcome for one configured server address.
type Result struct {
	Server string   `json:"server"`
	Host   string   `json:"host"`
	Addrs  []string `json:"addrs"`
	Err    error    `json:"-"`
	Error  string   `json:"error,omitempty"`
}

func (r Result) OK() bool {
	return r.Err == nil
}

type Checker struct {
	resolver string
	client   *dns.Client
	log      *slog.Logger
}

// NewChecker returns a Checker that queries resolver (host:port). An empty
// resolver uses the first nameserver from /etc/resolv.conf, falling back to
// the local stub resolver.
func NewChecker(resolver string, timeout time.Duration, log *slog.Logger) *Checker {
	if resolver == "" {
		resolver = systemResolver()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{
		resolver: resolver,
		client:   &dns.Client{Timeout: timeout},
		log:      log,
	}
}

func systemResolver() string {
	cfg, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil || len(cfg.Servers) == 0 {
		return DefaultResolver
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port)
}

// Check resolves every non-empty server address. Results keep input order.
func (c *Checker) Check(ctx context.Context, servers []string) []Result {
	results := make([]Result, 0, len(servers))
	for _, server := range servers {
		if server == "" {
			continue
		}
		res := c.checkOne(ctx, server)
		if res.Err != nil {
			res.Error = res.Err.Error()
			c.log.Warn("Server address check failed", slog.String("server", server), "err", res.Err)
		} else {
			c.log.Debug("Server address resolved", slog.String("server", server), slog.Any("addrs", res.Addrs))
		}
		results = append(results, res)
	}
	return results
}

func (c *Checker) checkOne(ctx context.Context, server string) Result {
	res := Result{Server: server, Addrs: []string{}}

	host, err := HostOf(server)
	if err != nil {
		res.Err = err
		return res
	}
	res.Host = host

	if ip := net.ParseIP(host); ip != nil {
		res.Addrs = append(res.Addrs, ip.String())
		return res
	}

	var errs []error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		addrs, err := c.lookup(ctx, host, qtype)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res.Addrs = append(res.Addrs, addrs...)
	}

	if len(res.Addrs) == 0 {
		res.Err = fmt.Errorf("%w: %s", ErrUnresolvable, host)
		if len(errs) > 0 {
			res.Err = fmt.Errorf("%w: %s: %w", ErrUnresolvable, host, errors.Join(errs...))
		}
	}
	return res
}

func (c *Checker) lookup(ctx context.Context, host string, qtype uint16) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	in, _, err := c.client.ExchangeContext(ctx, m, c.resolver)
	if err != nil {
		return nil, err
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%s %s: %s", dns.TypeToString[qtype], host, dns.RcodeToString[in.Rcode])
	}

	addrs := make([]string, 0, len(in.Answer))
	for _, answer := range in.Answer {
		switch rr := answer.(type) {
		case *dns.A:
			addrs = append(addrs, rr.A.String())
		case *dns.AAAA:
			addrs = append(addrs, rr.AAAA.String())
		}
	}
	return addrs, nil
}

// HostOf extracts the host name from a server address, which may be a bare
// host, host:port, or a URL.
func HostOf(server string) (string, error) {
	s := strings.TrimSpace(server)
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("invalid server address %q: %w", server, err)
		}
		s = u.Host
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		s = h
	}
	s = strings.Trim(s, "[]")
	if s == "" {
		return "", fmt.Errorf("invalid server address %q: empty host", server)
	}
	return s, nil
}
