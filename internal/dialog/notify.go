package dialog

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultDuration is how long a transient notification stays visible.
const DefaultDuration = 5 * time.Second

// Indicator is the color of a notification.
type Indicator string

const (
	IndicatorBlue   Indicator = "blue"
	IndicatorGreen  Indicator = "green"
	IndicatorOrange Indicator = "orange"
	IndicatorRed    Indicator = "red"
)

type Notification struct {
	Message   string
	Indicator Indicator
	Duration  time.Duration
}

// Notifier shows transient notifications to the employee.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Refresher re-renders the dashboard widgets that depend on the check-in state.
type Refresher interface {
	Refresh(ctx context.Context)
}

// RefresherFunc adapts a function to the Refresher interface.
type RefresherFunc func(ctx context.Context)

func (f RefresherFunc) Refresh(ctx context.Context) { f(ctx) }

// logNotifier writes notifications to the global logger. Used when no notifier is configured.
type logNotifier struct{}

func (logNotifier) Notify(n Notification) {
	ev := log.Info()
	if n.Indicator == IndicatorRed {
		ev = log.Warn()
	}
	ev.Str("indicator", string(n.Indicator)).Msg(n.Message)
}

func success(msg string) Notification {
	return Notification{Message: msg, Indicator: IndicatorGreen, Duration: DefaultDuration}
}

func failure(msg string) Notification {
	return Notification{Message: msg, Indicator: IndicatorRed, Duration: DefaultDuration}
}

func warning(msg string) Notification {
	return Notification{Message: msg, Indicator: IndicatorOrange, Duration: DefaultDuration}
}
