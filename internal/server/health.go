package server

import (
	"context"

	"github.com/vanshika/tallyline/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// StoreHealthService checks the results store. A nil client means
// persistence is disabled and the probe always passes.
type StoreHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s StoreHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}
