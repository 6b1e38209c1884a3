// Package catalog resolves plan ids to display names. Catalog management
// lives upstream; this is a read-only lookup.
package catalog

import (
	"context"
	"maps"
	"strings"

	id "benefits-bff/pkg/domain"
)

// Static serves plan names from a fixed map loaded at startup.
type Static struct {
	names map[id.PlanID]string
}

// NewStatic copies plans (planId → name). Blank ids or names are skipped.
func NewStatic(plans map[string]string) *Static {
	names := make(map[id.PlanID]string, len(plans))
	for planID, name := range plans {
		planID, name = strings.TrimSpace(planID), strings.TrimSpace(name)
		if planID == "" || name == "" {
			continue
		}
		names[id.PlanID(planID)] = name
	}
	return &Static{names: names}
}

// PlanName returns the configured name, or the plan id itself for plans the
// catalog does not know.
func (s *Static) PlanName(_ context.Context, planID id.PlanID) (string, error) {
	if name, ok := s.names[planID]; ok {
		return name, nil
	}
	return planID.String(), nil
}

// Plans returns a copy of the catalog.
func (s *Static) Plans() map[id.PlanID]string {
	return maps.Clone(s.names)
}
