package service

import (
	"context"
	"sync"

	"github.com/prohmpiriya/queue-buddy/internal/domain"
)

// memoryEventPublisher keeps published events in memory
type memoryEventPublisher struct {
	mu     sync.Mutex
	events []domain.QueueEvent
}

// newMemoryEventPublisher creates an in-memory publisher
func newMemoryEventPublisher() *memoryEventPublisher {
	return &memoryEventPublisher{}
}

// Publish records the event
func (p *memoryEventPublisher) Publish(ctx context.Context, event *domain.QueueEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

// Events returns the recorded events in publish order
func (p *memoryEventPublisher) Events() []domain.QueueEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.QueueEvent(nil), p.events...)
}

// Types returns the recorded event types in publish order
func (p *memoryEventPublisher) Types() []domain.QueueEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]domain.QueueEventType, len(p.events))
	for i := range p.events {
		types[i] = p.events[i].EventType
	}
	return types
}

// Close is a no-op
func (p *memoryEventPublisher) Close() error {
	return nil
}
