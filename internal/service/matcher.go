package service

import (
	"context"
	"fmt"

	"github.com/bellamoda/salon-bookings/internal/domain"
	"github.com/bellamoda/salon-bookings/internal/repository"
)

// ServiceMatcher resolves a customer's requested capabilities to a service
// row. Matching widens in stages: exact row, then any superset within the
// clientele, then any superset across all clienteles.
type ServiceMatcher struct {
	services repository.ServiceRepository
}

func NewServiceMatcher(services repository.ServiceRepository) *ServiceMatcher {
	return &ServiceMatcher{services: services}
}

// Match finds the best service for the requested flags. At least one flag
// must be requested. A matched service may offer more than asked, never
// less; among supersets the one with the fewest extra capabilities wins,
// ties broken by cutting, then washing, then coloring (true preferred).
func (m *ServiceMatcher) Match(ctx context.Context, clientele domain.Clientele, cut, wash, color bool) (*domain.Service, error) {
	if !cut && !wash && !color {
		return nil, domain.ErrNoServiceSelected
	}

	exact, err := m.services.FindExact(ctx, clientele, cut, wash, color)
	if err != nil {
		return nil, fmt.Errorf("exact service lookup failed: %w", err)
	}
	if exact != nil {
		return exact, nil
	}

	within, err := m.services.ListByClientele(ctx, clientele)
	if err != nil {
		return nil, fmt.Errorf("clientele service lookup failed: %w", err)
	}
	if best := pickSuperset(within, cut, wash, color); best != nil {
		return best, nil
	}

	// Cross-clientele fallback: the capability flags, not the clientele
	// label, define eligibility. Flagged with product as a deliberate
	// carry-over; drop this call to restrict matching to the requested
	// clientele.
	all, err := m.services.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service lookup failed: %w", err)
	}
	if best := pickSuperset(all, cut, wash, color); best != nil {
		return best, nil
	}

	return nil, domain.ErrServiceNotFound
}

// pickSuperset returns the minimal superset match from candidates, or nil.
func pickSuperset(candidates []domain.Service, cut, wash, color bool) *domain.Service {
	var best *domain.Service
	for i := range candidates {
		c := &candidates[i]
		if !c.Covers(cut, wash, color) {
			continue
		}
		if best == nil || betterMatch(c, best) {
			best = c
		}
	}
	return best
}

// betterMatch orders two superset candidates: fewer extra capabilities
// first, then cutting over washing over coloring, then the older row.
func betterMatch(a, b *domain.Service) bool {
	if a.FlagCount() != b.FlagCount() {
		return a.FlagCount() < b.FlagCount()
	}
	if a.Cutting != b.Cutting {
		return a.Cutting
	}
	if a.Washing != b.Washing {
		return a.Washing
	}
	if a.Coloring != b.Coloring {
		return a.Coloring
	}
	return a.ID < b.ID
}
