package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/jsonpit/pkg/core"
)

type pitSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits pit events, such as those
// from Pit.Events or Pit.Watch.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &pitSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *pitSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the pit channel closes, then
// closes the output channel.
func (s *pitSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
