// Package messaging defines the events emitted by the catalog and the
// publisher abstraction they are sent through.
package messaging

import (
	"context"
)

const (
	ProductsSubjectPrefix      = "catalog.products."
	ProductCreatedSubject      = ProductsSubjectPrefix + "created"
	ProductUpdatedSubject      = ProductsSubjectPrefix + "updated"
	ProductPriceChangedSubject = ProductsSubjectPrefix + "price_changed"
	ProductDeletedSubject      = ProductsSubjectPrefix + "deleted"
	ProductsSubjectWildcard    = ProductsSubjectPrefix + ">"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
