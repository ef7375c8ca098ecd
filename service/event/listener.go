package event

import (
	"context"
	"log"
)

// Listener consumes events of one type and hands them to a handler on a
// dedicated goroutine.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (l *Listener[T]) Stop() {
	l.cancel()
}

func (l *Listener[T]) Start() {
	go func() {
		for {
			select {
			case <-l.ctx.Done():
				return
			default:
				event, err := l.publisher.Consume(l.ctx)
				if err != nil {
					if l.ctx.Err() != nil {
						return
					}
					log.Printf("Error consuming event: %v", err)
					continue
				}
				if event == nil {
					continue
				}
				l.handler(event)
			}
		}
	}()
}
