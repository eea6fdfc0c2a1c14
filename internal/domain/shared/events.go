package shared

import "time"

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// AggregateRoot collects events raised by an aggregate until they are drained
type AggregateRoot struct {
	events []DomainEvent
}

// AddEvent adds a domain event
func (a *AggregateRoot) AddEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// Events returns and clears pending domain events
func (a *AggregateRoot) Events() []DomainEvent {
	events := a.events
	a.events = nil
	return events
}

// PendingEvents returns the number of undrained events
func (a *AggregateRoot) PendingEvents() int {
	return len(a.events)
}
