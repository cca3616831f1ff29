package doctor

import (
	"context"
	"time"
)

// Probe is one backend call the check makes. It returns a short detail on
// success.
type Probe struct {
	Label string
	Run   func(ctx context.Context) (string, error)
}

// BackendCheck calls each probe against the assistant backend.
type BackendCheck struct {
	url     string
	timeout time.Duration
	probes  []Probe
}

func NewBackendCheck(url string, timeout time.Duration, probes ...Probe) *BackendCheck {
	return &BackendCheck{url: url, timeout: timeout, probes: probes}
}

func (c *BackendCheck) Name() string {
	return "Backend"
}

func (c *BackendCheck) Run(ctx context.Context, _ bool) Result {
	result := Result{Name: c.Name()}
	result.add("url", StatusPass, c.url)

	for _, p := range c.probes {
		pctx, cancel := ctx, context.CancelFunc(func() {})
		if c.timeout > 0 {
			pctx, cancel = context.WithTimeout(ctx, c.timeout)
		}

		start := time.Now()
		detail, err := p.Run(pctx)
		cancel()

		if err != nil {
			result.add(p.Label, StatusFail, err.Error())
			continue
		}
		if detail != "" {
			detail += ", "
		}
		result.add(p.Label, StatusPass, detail+time.Since(start).Round(time.Millisecond).String())
	}

	return result
}
