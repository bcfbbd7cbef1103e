package mocks

import (
	"context"

	"vitalog/tracker/defs"
)

type Notifier struct {
	Alerts []defs.Alert
	Err    error
}

func (n *Notifier) Notify(_ context.Context, al defs.Alert) error {
	if n.Err != nil {
		return n.Err
	}
	n.Alerts = append(n.Alerts, al)
	return nil
}
