package action

import (
	"context"
	"fmt"
	"time"
)

var _ Action = new(delayAction)

// delayAction waits for the delay param, in seconds, before completing.
type delayAction struct {
	baseAction
}

func NewDelayAction() *delayAction {
	return &delayAction{baseAction: newBaseAction("delay", ACTION_TYPE_SYSTEM)}
}

func delayOf(params map[string]any) (time.Duration, error) {
	var seconds float64
	switch v := params["delay"].(type) {
	case int:
		seconds = float64(v)
	case int64:
		seconds = float64(v)
	case float64:
		seconds = v
	default:
		return 0, fmt.Errorf("delay param must be a number of seconds")
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("delay value %v wrong", seconds)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (d *delayAction) Validate(params map[string]any) error {
	_, err := delayOf(params)
	return err
}

func (d *delayAction) Execute(ctx context.Context, req Request) (map[string]any, error) {
	delay, err := delayOf(req.Params)
	if err != nil {
		return nil, err
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
