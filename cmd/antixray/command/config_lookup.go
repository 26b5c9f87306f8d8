package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-antixray/internal/lookup"
)

type LookupConfig struct {
	Timeout string `json:"timeout"`
}

func (c *LookupConfig) validate() error {
	el := errors.NewErrorList()

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing lookup timeout: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("lookup timeout must be positive"))
		}
	}

	return el.Err()
}

func (c *LookupConfig) buildDispatcher(online lookup.Online, resolver lookup.Resolver, poster lookup.Poster) (*lookup.Dispatcher, error) {
	var opts []lookup.DispatcherOpt
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing lookup timeout: %w", err)
		}
		opts = append(opts, lookup.WithTimeout(d))
	}
	return lookup.NewDispatcher(online, resolver, poster, opts...), nil
}
