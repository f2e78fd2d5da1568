package models

import "errors"

// ErrInvalidTransition is returned when a status change is not permitted
// by the entity's state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

type ProductStatus string

const (
	ProductActive  ProductStatus = "active"
	ProductSold    ProductStatus = "sold"
	ProductExpired ProductStatus = "expired"
)

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidCountered BidStatus = "countered"
)

type TransportStatus string

const (
	TransportPending   TransportStatus = "pending"
	TransportAccepted  TransportStatus = "accepted"
	TransportInTransit TransportStatus = "in_transit"
	TransportDelivered TransportStatus = "delivered"
)

var productTransitions = map[ProductStatus][]ProductStatus{
	ProductActive: {ProductSold, ProductExpired},
}

// sold, rejected and countered bids are terminal; only pending moves.
var bidTransitions = map[BidStatus][]BidStatus{
	BidPending: {BidAccepted, BidRejected, BidCountered},
}

var transportTransitions = map[TransportStatus][]TransportStatus{
	TransportPending:   {TransportAccepted},
	TransportAccepted:  {TransportInTransit},
	TransportInTransit: {TransportDelivered},
}

func TransitionProduct(from, to ProductStatus) error {
	for _, s := range productTransitions[from] {
		if s == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

func TransitionBid(from, to BidStatus) error {
	for _, s := range bidTransitions[from] {
		if s == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

func TransitionTransport(from, to TransportStatus) error {
	for _, s := range transportTransitions[from] {
		if s == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidAccepted, BidRejected, BidCountered:
		return true
	}
	return false
}

func ValidTransportStatus(s TransportStatus) bool {
	switch s {
	case TransportAccepted, TransportInTransit, TransportDelivered:
		return true
	}
	return false
}
