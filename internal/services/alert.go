package services

import (
	"fmt"
	"route-watch-service/internal/domain"
)

// FormatAlert renders the notification text for an actionable result.
func FormatAlert(r *domain.CongestionResult) string {
	alt := 0.0
	if r.AlternativeTravelTime != nil {
		alt = *r.AlternativeTravelTime
	}
	return fmt.Sprintf(
		"Traffic Alert: %s is congested! Current: %.1fmin, Alternative: %.1fmin",
		r.RouteName, r.CurrentTravelTime, alt,
	)
}

// FormatSummary renders a one-line human readable verdict.
func FormatSummary(r *domain.CongestionResult) string {
	status := "clear"
	if r.IsCongested {
		status = "congested"
	}

	line := fmt.Sprintf(
		"%s: %s (current %.1fmin, free-flow %.1fmin, ratio %.2f)",
		r.RouteName, status, r.CurrentTravelTime, r.FreeFlowTravelTime, r.CongestionRatio,
	)
	if r.AlternativeTravelTime != nil {
		verdict := "not faster"
		if r.AlternativeAvailable {
			verdict = "faster"
		}
		line += fmt.Sprintf(", alternative %.1fmin %s", *r.AlternativeTravelTime, verdict)
	}
	return line
}
