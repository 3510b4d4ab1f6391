// Package events contains the catalog change events.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storecatalog/pkg/messaging"
	"github.com/shopspring/decimal"
)

// ProductEvent is the common payload of every product event.
type ProductEvent struct {
	EventID     string          `json:"event_id"`
	ProductCode string          `json:"product_code"`
	Name        string          `json:"name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

type ProductCreatedEvent struct{ ProductEvent }

func (e ProductCreatedEvent) Subject() string { return messaging.ProductCreatedSubject }

func (e ProductCreatedEvent) Payload() ([]byte, error) { return json.Marshal(e) }

type ProductUpdatedEvent struct{ ProductEvent }

func (e ProductUpdatedEvent) Subject() string { return messaging.ProductUpdatedSubject }

func (e ProductUpdatedEvent) Payload() ([]byte, error) { return json.Marshal(e) }

// ProductPriceChangedEvent carries the price before and after the change.
type ProductPriceChangedEvent struct {
	ProductEvent
	OldPrice decimal.Decimal `json:"old_price"`
}

func (e ProductPriceChangedEvent) Subject() string { return messaging.ProductPriceChangedSubject }

func (e ProductPriceChangedEvent) Payload() ([]byte, error) { return json.Marshal(e) }

type ProductDeletedEvent struct{ ProductEvent }

func (e ProductDeletedEvent) Subject() string { return messaging.ProductDeletedSubject }

func (e ProductDeletedEvent) Payload() ([]byte, error) { return json.Marshal(e) }
