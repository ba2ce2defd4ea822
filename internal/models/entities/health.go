package entities

import "time"

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// HealthCheckResponse is served on /healthCheck. Guild is empty until the
// operating context has been resolved.
type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Guild    string                   `json:"guild,omitempty"`
	Services map[string]ServiceStatus `json:"services"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}
