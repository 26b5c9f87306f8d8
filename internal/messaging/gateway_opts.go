package messaging

import "time"

type GatewayOpt func(*Gateway)

// WithEventTimeout bounds how long a host event waits for the driver loop.
func WithEventTimeout(d time.Duration) GatewayOpt {
	return func(g *Gateway) {
		g.eventTimeout = d
	}
}

// WithAdminTimeout bounds how long an admin command, including player lookups, may take.
func WithAdminTimeout(d time.Duration) GatewayOpt {
	return func(g *Gateway) {
		g.adminTimeout = d
	}
}
