// Package events publishes domain events for external observers such as
// dashboards. Delivery is best-effort: a failed publish is logged and never
// fails the operation that produced the event.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	KindTransfertEffectue = "transfert_effectue"
	KindTransfertAnnule   = "transfert_annule"
)

type TransfertEvent struct {
	Kind                 string          `json:"kind"`
	TransfertID          uuid.UUID       `json:"transfert_id"`
	RecetteSourceID      uuid.UUID       `json:"recette_source_id"`
	RecetteDestinationID uuid.UUID       `json:"recette_destination_id"`
	Montant              decimal.Decimal `json:"montant"`
	Timestamp            time.Time       `json:"timestamp"`
}

type Publisher interface {
	PublishTransfert(ctx context.Context, evt TransfertEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishTransfert(context.Context, TransfertEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
