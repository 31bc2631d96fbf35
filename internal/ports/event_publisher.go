package ports

import "pedestrian-nav-service/internal/domain"

// Fan-out of session events to interested clients. Publish must not block
// the caller for long; slow consumers are the publisher's problem.
type EventPublisher interface {
	Publish(event domain.SessionEvent)
}
