// Package config parses endpoint URIs and assembles the bridge's runtime
// configuration from CLI flags.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Endpoint holds the connection parameters for one Redis-protocol server,
// parsed from a redis:// or rediss:// URI.
type Endpoint struct {
	Host          string
	Port          uint16
	User          string
	Password      string
	TLS           bool
	SkipTLSVerify bool // set by the #insecure URI fragment
}

// ParseURI parses a URI of the form
// redis[s]://[user[:password]@]host:port[#insecure]
// into the Endpoint fields.
func (e *Endpoint) ParseURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid connection URI: %w", err)
	}
	switch u.Scheme {
	case "redis":
		e.TLS = false
	case "rediss":
		e.TLS = true
	default:
		return fmt.Errorf("unsupported URI scheme %q (expected redis or rediss)", u.Scheme)
	}

	if u.Hostname() == "" {
		return errors.New("connection URI is missing a host")
	}
	e.Host = u.Hostname()

	if u.Port() != "" {
		p, err := strconv.ParseUint(u.Port(), 10, 16)
		if err != nil {
			return fmt.Errorf("invalid port in URI: %w", err)
		}
		e.Port = uint16(p)
	} else {
		e.Port = 6379
	}

	if u.User != nil {
		e.User = u.User.Username()
		if password, ok := u.User.Password(); ok {
			e.Password = password
		}
	}

	if u.Fragment == "insecure" {
		e.SkipTLSVerify = true
	}
	return nil
}

// Addr returns the "host:port" form used for dialing and for the
// checkpoint filename hash.
func (e Endpoint) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// TLSConfig returns the *tls.Config to dial with, or nil for a plaintext
// connection.
func (e Endpoint) TLSConfig() *tls.Config {
	if !e.TLS {
		return nil
	}
	return &tls.Config{InsecureSkipVerify: e.SkipTLSVerify} //nolint:gosec // opt-in via #insecure fragment
}

// Mode selects how converted requests are delivered to targets.
type Mode int

const (
	// ModeStandalone sends every request to the single configured target.
	ModeStandalone Mode = iota
	// ModeSharded fans requests out across targets via consistent hashing.
	ModeSharded
	// ModeCluster delegates routing to a cluster-aware connection.
	ModeCluster
)

// Identity is an optional client TLS identity presented to targets: a PEM
// file holding both certificate and (possibly passphrase-encrypted) private
// key blocks.
type Identity struct {
	CertPath string
	KeyPass  string
}

// Certificate loads the PEM file at CertPath and returns the resulting
// tls.Certificate, decrypting the private key block with KeyPass first if
// it is encrypted. Returns the zero Certificate and a nil error when
// CertPath is unset, so callers can assign the result unconditionally.
func (id Identity) Certificate() (tls.Certificate, error) {
	if id.CertPath == "" {
		return tls.Certificate{}, nil
	}
	raw, err := os.ReadFile(id.CertPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read identity file: %w", err)
	}

	var certPEM, keyPEM []byte
	rest := raw
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		switch {
		case strings.Contains(block.Type, "CERTIFICATE"):
			certPEM = append(certPEM, pem.EncodeToMemory(block)...)
		case strings.Contains(block.Type, "PRIVATE KEY"):
			if x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck // no pack library offers PEM passphrase decryption
				der, err := x509.DecryptPEMBlock(block, []byte(id.KeyPass)) //nolint:staticcheck
				if err != nil {
					return tls.Certificate{}, fmt.Errorf("decrypt identity key: %w", err)
				}
				keyPEM = pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der})
			} else {
				keyPEM = append(keyPEM, pem.EncodeToMemory(block)...)
			}
		}
	}
	if len(certPEM) == 0 || len(keyPEM) == 0 {
		return tls.Certificate{}, fmt.Errorf("identity file %s: missing certificate or key block", id.CertPath)
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

// Config is the bridge's fully-resolved runtime configuration.
type Config struct {
	Source Endpoint
	Target []Endpoint

	DiscardRDB bool // -d / --discard-rdb: skip the snapshot copy
	AOF        bool // -a / --aof: also copy the ongoing mutation stream

	Mode Mode

	BatchSize     int           // <= 0 means unbounded
	FlushInterval time.Duration

	Identity Identity

	LogLevel  string
	LogFormat string // "json" or "console"

	APIPort int // 0 disables the status server
	TUI     bool
}

// Defaults returns a Config with every non-required field at its
// documented default.
func Defaults() Config {
	return Config{
		BatchSize:     2500,
		FlushInterval: 100 * time.Millisecond,
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// Validate checks cross-field invariants that flag parsing alone can't
// express.
func (c *Config) Validate() error {
	var errs []error

	if c.Source.Host == "" {
		errs = append(errs, errors.New("source URI is required"))
	}
	if len(c.Target) == 0 {
		errs = append(errs, errors.New("at least one target URI is required"))
	}
	if c.Mode == ModeSharded && len(c.Target) < 2 {
		errs = append(errs, errors.New("sharded mode requires at least two targets"))
	}

	sharding := c.Mode == ModeSharded
	cluster := c.Mode == ModeCluster
	if sharding && cluster {
		errs = append(errs, errors.New("--sharding and --cluster are mutually exclusive"))
	}
	if cluster && len(c.Target) != 1 {
		errs = append(errs, errors.New("cluster mode takes a single seed target"))
	}

	if c.FlushInterval <= 0 {
		c.FlushInterval = 100 * time.Millisecond
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}

	return errors.Join(errs...)
}

// ResolveMode derives a Mode from the --sharding and --cluster booleans,
// returning an error if both are set.
func ResolveMode(sharding, cluster bool) (Mode, error) {
	if sharding && cluster {
		return ModeStandalone, errors.New("--sharding and --cluster are mutually exclusive")
	}
	if sharding {
		return ModeSharded, nil
	}
	if cluster {
		return ModeCluster, nil
	}
	return ModeStandalone, nil
}

// String renders a Mode for logging and the status surface.
func (m Mode) String() string {
	switch m {
	case ModeSharded:
		return "sharded"
	case ModeCluster:
		return "cluster"
	default:
		return "standalone"
	}
}

// ParseTargets parses each of uris in order, stopping at the first error.
func ParseTargets(uris []string) ([]Endpoint, error) {
	out := make([]Endpoint, 0, len(uris))
	for _, u := range uris {
		var ep Endpoint
		if err := ep.ParseURI(u); err != nil {
			return nil, fmt.Errorf("target %q: %w", u, err)
		}
		out = append(out, ep)
	}
	return out, nil
}

// Addrs returns the host:port of every target, in flag order.
func Addrs(targets []Endpoint) []string {
	addrs := make([]string, len(targets))
	for i, t := range targets {
		addrs[i] = t.Addr()
	}
	return addrs
}

// redactedURI backs Endpoint.String, used in log lines and in the status
// API's config response; it never appears in an error returned to the
// caller.
func redactedURI(e Endpoint) string {
	scheme := "redis"
	if e.TLS {
		scheme = "rediss"
	}
	if e.User == "" {
		return fmt.Sprintf("%s://%s", scheme, e.Addr())
	}
	return fmt.Sprintf("%s://%s@%s", scheme, e.User, e.Addr())
}

// String implements fmt.Stringer for log fields, never leaking the password.
func (e Endpoint) String() string {
	return redactedURI(e)
}
