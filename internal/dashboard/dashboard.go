// Package dashboard keeps the navbar check-in status and the employees
// present card up to date.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Renderer produces the HTML of the dashboard widgets.
type Renderer interface {
	RenderNavbarStatus(ctx context.Context) (string, error)
	RenderPresentCard(ctx context.Context) (string, error)
}

// Widgets holds the last rendered HTML of each widget.
type Widgets struct {
	NavbarStatus string
	PresentCard  string
}

// Sink receives the widgets after every refresh.
type Sink func(Widgets)

type Dashboard struct {
	renderer Renderer
	sink     Sink

	mu   sync.Mutex
	last Widgets
}

func New(renderer Renderer, sink Sink) *Dashboard {
	if sink == nil {
		sink = func(Widgets) {}
	}
	return &Dashboard{renderer: renderer, sink: sink}
}

// Refresh re-renders both widgets. A widget that fails to render keeps its
// previous content.
func (d *Dashboard) Refresh(ctx context.Context) {
	status, statusErr := d.renderer.RenderNavbarStatus(ctx)
	if statusErr != nil {
		log.Ctx(ctx).Warn().Err(statusErr).Msg("Failed to render navbar status")
	}
	card, cardErr := d.renderer.RenderPresentCard(ctx)
	if cardErr != nil {
		log.Ctx(ctx).Warn().Err(cardErr).Msg("Failed to render employees present card")
	}

	d.mu.Lock()
	if statusErr == nil {
		d.last.NavbarStatus = status
	}
	if cardErr == nil {
		d.last.PresentCard = card
	}
	widgets := d.last
	d.mu.Unlock()

	d.sink(widgets)
}

// Last returns the widgets of the latest refresh.
func (d *Dashboard) Last() Widgets {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// DefaultInterval is the refresh period used when Run gets no positive interval.
const DefaultInterval = 15 * time.Second

// Run refreshes right away and then every interval until ctx is done.
func (d *Dashboard) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	d.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Refresh(ctx)
		}
	}
}
