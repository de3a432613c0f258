package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrtime.service/internal/dialog"
)

var _ dialog.Refresher = (*Dashboard)(nil)

type fakeRenderer struct {
	mu        sync.Mutex
	status    string
	card      string
	statusErr error
	calls     int
}

func (f *fakeRenderer) RenderNavbarStatus(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.status, f.statusErr
}

func (f *fakeRenderer) RenderPresentCard(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.card, nil
}

func TestRefreshKeepsLastGoodWidget(t *testing.T) {
	r := &fakeRenderer{status: "<pill>in</pill>", card: "<card>1</card>"}
	var got []Widgets
	d := New(r, func(w Widgets) { got = append(got, w) })

	d.Refresh(context.Background())
	assert.Equal(t, Widgets{NavbarStatus: "<pill>in</pill>", PresentCard: "<card>1</card>"}, d.Last())

	r.mu.Lock()
	r.statusErr = errors.New("backend down")
	r.card = "<card>2</card>"
	r.mu.Unlock()

	d.Refresh(context.Background())
	require.Len(t, got, 2)
	assert.Equal(t, Widgets{NavbarStatus: "<pill>in</pill>", PresentCard: "<card>2</card>"}, got[1])
}

func TestRunRefreshesPeriodically(t *testing.T) {
	r := &fakeRenderer{}
	d := New(r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.calls >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunWithoutIntervalUsesDefault(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		r := &fakeRenderer{}
		d := New(r, nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			d.Run(ctx, interval)
			close(done)
		}()

		assert.Eventually(t, func() bool {
			r.mu.Lock()
			defer r.mu.Unlock()
			return r.calls == 1
		}, time.Second, 5*time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Run did not return after cancel")
		}
	}
}
