package service

import (
	"time"

	"leverlab/internal/modules/focus/domain"
	"leverlab/internal/platform/clock"
	"leverlab/internal/platform/day"
)

type FocusService struct {
	clock  clock.Clock
	ranker domain.Ranker
	ranked []domain.Preset
}

func NewFocusService(clock clock.Clock, catalog []domain.Preset, settings domain.Settings) *FocusService {
	if len(catalog) == 0 {
		catalog = domain.DefaultCatalog()
	}
	return &FocusService{
		clock:  clock,
		ranker: domain.NewRanker(catalog, domain.FallbackPool(), settings),
		ranked: catalog,
	}
}

func (s *FocusService) Now() time.Time {
	return s.clock.Now()
}

func (s *FocusService) Today() day.Date {
	return clock.Today(s.clock)
}

func (s *FocusService) Catalog() []domain.Preset {
	return s.ranked
}

func (s *FocusService) Rank(sig domain.Signals) domain.Insight {
	return s.ranker.Rank(sig, s.Now())
}
