package enums

import "fmt"

// ShipmentStatus tracks delivery progress for an order. Forward transitions
// follow the rank order below; cancelled and returned are side exits reachable
// from any non-terminal state.
type ShipmentStatus string

const (
	ShipmentStatusPending        ShipmentStatus = "pending"
	ShipmentStatusAssigned       ShipmentStatus = "assigned"
	ShipmentStatusPickedUp       ShipmentStatus = "picked_up"
	ShipmentStatusInTransit      ShipmentStatus = "in_transit"
	ShipmentStatusOutForDelivery ShipmentStatus = "out_for_delivery"
	ShipmentStatusDelivered      ShipmentStatus = "delivered"
	ShipmentStatusCancelled      ShipmentStatus = "cancelled"
	ShipmentStatusReturned       ShipmentStatus = "returned"
)

var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusAssigned,
	ShipmentStatusPickedUp,
	ShipmentStatusInTransit,
	ShipmentStatusOutForDelivery,
	ShipmentStatusDelivered,
	ShipmentStatusCancelled,
	ShipmentStatusReturned,
}

var shipmentStatusRanks = map[ShipmentStatus]int{
	ShipmentStatusPending:        0,
	ShipmentStatusAssigned:       1,
	ShipmentStatusPickedUp:       2,
	ShipmentStatusInTransit:      3,
	ShipmentStatusOutForDelivery: 4,
	ShipmentStatusDelivered:      5,
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentStatus.
func (s ShipmentStatus) IsValid() bool {
	for _, candidate := range validShipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s ShipmentStatus) IsTerminal() bool {
	switch s {
	case ShipmentStatusDelivered, ShipmentStatusCancelled, ShipmentStatusReturned:
		return true
	}
	return false
}

// Rank returns the forward-progress position of the status. Side-exit states
// (cancelled, returned) have no rank and report -1.
func (s ShipmentStatus) Rank() int {
	if rank, ok := shipmentStatusRanks[s]; ok {
		return rank
	}
	return -1
}

// ParseShipmentStatus converts raw input into a ShipmentStatus.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	for _, candidate := range validShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment status %q", value)
}
