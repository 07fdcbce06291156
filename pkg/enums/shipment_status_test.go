package enums

import "testing"

func TestShipmentStatusRanksAreStrictlyIncreasing(t *testing.T) {
	ordered := []ShipmentStatus{
		ShipmentStatusPending,
		ShipmentStatusAssigned,
		ShipmentStatusPickedUp,
		ShipmentStatusInTransit,
		ShipmentStatusOutForDelivery,
		ShipmentStatusDelivered,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Fatalf("rank of %s (%d) should exceed rank of %s (%d)",
				ordered[i], ordered[i].Rank(), ordered[i-1], ordered[i-1].Rank())
		}
	}
}

func TestShipmentStatusSideExitsHaveNoRank(t *testing.T) {
	if ShipmentStatusCancelled.Rank() != -1 {
		t.Fatalf("cancelled should have no rank, got %d", ShipmentStatusCancelled.Rank())
	}
	if ShipmentStatusReturned.Rank() != -1 {
		t.Fatalf("returned should have no rank, got %d", ShipmentStatusReturned.Rank())
	}
}

func TestShipmentStatusTerminals(t *testing.T) {
	terminals := []ShipmentStatus{ShipmentStatusDelivered, ShipmentStatusCancelled, ShipmentStatusReturned}
	for _, status := range terminals {
		if !status.IsTerminal() {
			t.Fatalf("%s should be terminal", status)
		}
	}
	open := []ShipmentStatus{ShipmentStatusPending, ShipmentStatusAssigned, ShipmentStatusPickedUp, ShipmentStatusInTransit, ShipmentStatusOutForDelivery}
	for _, status := range open {
		if status.IsTerminal() {
			t.Fatalf("%s should not be terminal", status)
		}
	}
}

func TestParseShipmentStatus(t *testing.T) {
	status, err := ParseShipmentStatus("out_for_delivery")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != ShipmentStatusOutForDelivery {
		t.Fatalf("unexpected status %s", status)
	}

	if _, err := ParseShipmentStatus("shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("dropshipper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != UserRoleDropshipper {
		t.Fatalf("unexpected role %s", role)
	}

	if _, err := ParseUserRole("vendor"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
