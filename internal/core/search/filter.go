// Package search filters in-memory shipment collections by free text.
package search

import (
	"strings"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Fields returns the text fields a search term is matched against:
// receiver name, tracking number, receiver phone, destination, status,
// sender name and sender phone.
func Fields(s domain.Shipment) [7]string {
	return [7]string{
		s.ReceiverName,
		s.TrackingNumber,
		s.ReceiverPhone,
		s.DeliveryAddress,
		string(s.Status),
		s.SenderName,
		s.SenderPhone,
	}
}

// Matches reports whether any searchable field contains term, ignoring case.
func Matches(s domain.Shipment, term string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	for _, f := range Fields(s) {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Filter returns the subsequence of items matching term. An empty term
// returns items unchanged.
func Filter(items []domain.Shipment, term string) []domain.Shipment {
	if strings.TrimSpace(term) == "" {
		return items
	}
	out := make([]domain.Shipment, 0, len(items))
	for _, s := range items {
		if Matches(s, term) {
			out = append(out, s)
		}
	}
	return out
}

// FilterByStatus keeps items whose status equals status. Empty or "all" keeps
// everything.
func FilterByStatus(items []domain.Shipment, status string) []domain.Shipment {
	if status == "" || status == StatusAll {
		return items
	}
	out := make([]domain.Shipment, 0, len(items))
	for _, s := range items {
		if string(s.Status) == status {
			out = append(out, s)
		}
	}
	return out
}

// CountByStatus tallies items per status for the list summary cards.
func CountByStatus(items []domain.Shipment) map[domain.ShipmentStatus]int {
	counts := make(map[domain.ShipmentStatus]int, 4)
	for _, s := range items {
		counts[s.Status]++
	}
	return counts
}
