package bridge

import (
	"crypto/tls"

	"github.com/jfoltran/copyredis/internal/config"
	"github.com/jfoltran/copyredis/internal/dispatch"
	"github.com/jfoltran/copyredis/internal/sink"
)

// dialerFor builds a dispatch.DialFunc that opens a production sink.Conn for
// each target address, carrying that target's own TLS/auth parameters plus
// the shared client identity (if any). Targets are looked up by address;
// nothing checks that addresses are unique, and when two targets share one
// the later target's parameters are used.
func dialerFor(targets []config.Endpoint, identity config.Identity) dispatch.DialFunc {
	byAddr := make(map[string]config.Endpoint, len(targets))
	for _, t := range targets {
		byAddr[t.Addr()] = t
	}
	cert, certErr := identity.Certificate()

	return func(addr string) sink.Executor {
		ep := byAddr[addr]
		tlsCfg := ep.TLSConfig()
		if tlsCfg != nil && certErr == nil && len(cert.Certificate) > 0 {
			tlsCfg.Certificates = []tls.Certificate{cert}
		}
		return sink.Dial(sink.Options{
			Addr:      addr,
			Username:  ep.User,
			Password:  ep.Password,
			TLSConfig: tlsCfg,
		})
	}
}
