package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/dataminer/internal/logctx"
)

// DefaultProbeTimeout bounds each mirror probe.
const DefaultProbeTimeout = 10 * time.Second

// Failover picks the first live endpoint from an ordered candidate list.
// Candidates are probed strictly in order, one at a time; the first one that
// answers 2xx is pinned and returned for every later call on the same
// Failover. Earlier candidates are never probed again. A Failover is meant
// to live for one extraction call.
type Failover struct {
	Client     *Client
	Candidates []string
	// ProbeURL maps a candidate base to the URL probed. Nil probes the base.
	ProbeURL     func(base string) string
	ProbeTimeout time.Duration

	active   string
	pinned   Response
	probed   bool
	failures []error
}

// Resolve returns the pinned endpoint, probing candidates on first use.
func (f *Failover) Resolve(ctx context.Context) (string, error) {
	if f.probed {
		if f.active == "" {
			return "", f.exhausted()
		}
		return f.active, nil
	}
	f.probed = true
	timeout := f.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	for _, base := range f.Candidates {
		target := base
		if f.ProbeURL != nil {
			target = f.ProbeURL(base)
		}
		resp, err := f.Client.Probe(ctx, target, timeout)
		if err != nil {
			logctx.From(ctx).Debug().Err(err).Str("mirror", base).Msg("mirror probe failed")
			f.failures = append(f.failures, err)
			continue
		}
		logctx.From(ctx).Debug().Str("mirror", base).Msg("mirror selected")
		f.active = base
		f.pinned = resp
		return base, nil
	}
	return "", f.exhausted()
}

// Pinned returns the probe response of the pinned candidate, so callers
// that probe a real resource need not fetch it twice.
func (f *Failover) Pinned() Response { return f.pinned }

// Failures lists the probe errors seen so far, in candidate order.
func (f *Failover) Failures() []error { return append([]error(nil), f.failures...) }

func (f *Failover) exhausted() error {
	msgs := make([]string, 0, len(f.failures))
	for _, e := range f.failures {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("%w (tried %d): %s", ErrNoMirror, len(f.Candidates), strings.Join(msgs, "; "))
}
