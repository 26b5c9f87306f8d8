package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-antixray/internal/messaging"
)

type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
	EventTimeout string `json:"event_timeout"`
	AdminTimeout string `json:"admin_timeout"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	for name, v := range map[string]string{
		"start_timeout": n.StartTimeout,
		"event_timeout": n.EventTimeout,
		"admin_timeout": n.AdminTimeout,
	} {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			el.Add(fmt.Errorf("parsing %s: %w", name, err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("%s must be positive", name))
		}
	}

	return el.Err()
}

func (c *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if c.StartTimeout != "" {
		d, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if c.Host != "" {
		opts = append(opts, messaging.WithHost(c.Host))
	}
	if c.Port != 0 {
		opts = append(opts, messaging.WithPort(c.Port))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (c *NatsConfig) gatewayOpts() ([]messaging.GatewayOpt, error) {
	var opts []messaging.GatewayOpt
	if c.EventTimeout != "" {
		d, err := time.ParseDuration(c.EventTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing event_timeout: %w", err)
		}
		opts = append(opts, messaging.WithEventTimeout(d))
	}
	if c.AdminTimeout != "" {
		d, err := time.ParseDuration(c.AdminTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing admin_timeout: %w", err)
		}
		opts = append(opts, messaging.WithAdminTimeout(d))
	}
	return opts, nil
}
