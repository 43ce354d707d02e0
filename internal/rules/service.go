package rules

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	dbgen "github.com/ollan-health/checkout-api/internal/db/gen"
	"github.com/ollan-health/checkout-api/internal/pricing"
)

// Service assembles the pricing rule set. Tariffs (fees, threshold, lead
// time) come from configuration; the allow-lists come from Postgres when a
// store is wired, with the built-in defaults as fallback for lists the store
// does not populate. Assembled rules are cached in Redis.
type Service struct {
	Q        dbgen.Querier
	Cache    *Cache
	Defaults pricing.Rules
	Logger   *zerolog.Logger
}

func (s *Service) defaults() pricing.Rules {
	if s == nil || s.Defaults.ExpressFee == 0 {
		return pricing.DefaultRules()
	}
	return s.Defaults
}

// Load returns the current rules: cache first, then store, defaults when no
// store is configured. A store failure is an error, not a silent fallback;
// quoting against stale allow-lists would misprice orders.
func (s *Service) Load(ctx context.Context) (pricing.Rules, error) {
	if s == nil || s.Q == nil {
		return s.defaults(), nil
	}
	var cached pricing.Rules
	hit, err := s.Cache.Get(ctx, &cached)
	if err != nil && s.Logger != nil {
		s.Logger.Warn().Err(err).Msg("rules cache read failed")
	}
	if hit {
		return cached, nil
	}
	rules, err := s.loadFromStore(ctx)
	if err != nil {
		return pricing.Rules{}, err
	}
	if err := s.Cache.Set(ctx, rules); err != nil && s.Logger != nil {
		s.Logger.Warn().Err(err).Msg("rules cache write failed")
	}
	return rules, nil
}

// Refresh re-reads the store and rewrites the cache. Used by the background
// worker and after admin mutations.
func (s *Service) Refresh(ctx context.Context) (pricing.Rules, error) {
	if s == nil || s.Q == nil {
		return s.defaults(), nil
	}
	rules, err := s.loadFromStore(ctx)
	if err != nil {
		return pricing.Rules{}, err
	}
	if err := s.Cache.Set(ctx, rules); err != nil {
		return pricing.Rules{}, err
	}
	return rules, nil
}

// Invalidate drops the cached rules.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.Cache.Invalidate(ctx)
}

func (s *Service) loadFromStore(ctx context.Context) (pricing.Rules, error) {
	rules := s.defaults()

	codes, err := s.Q.ListActivePromoCodes(ctx)
	if err != nil {
		return pricing.Rules{}, err
	}
	if len(codes) > 0 {
		var category, free []string
		for _, c := range codes {
			switch c.Kind {
			case dbgen.PromoKindCategoryDiscount:
				category = append(category, c.Code)
				if c.PercentBps.Valid && c.PercentBps.Int32 > 0 {
					rules.DiscountBps = c.PercentBps.Int32
				}
			case dbgen.PromoKindFreeDelivery:
				free = append(free, c.Code)
			}
		}
		rules.CategoryCodes = category
		rules.FreeDeliveryCodes = free
	}

	areas, err := s.Q.ListDeliveryAreas(ctx)
	if err != nil {
		return pricing.Rules{}, err
	}
	if len(areas) > 0 {
		var campus []string
		for _, a := range areas {
			if a.Campus {
				campus = append(campus, a.Name)
			}
		}
		rules.CampusAreas = campus
	}

	locations, err := s.Q.ListPickupLocations(ctx)
	if err != nil {
		return pricing.Rules{}, err
	}
	if len(locations) > 0 {
		points := make(map[string][]string)
		for _, l := range locations {
			key := strings.TrimSpace(l.AreaName)
			points[key] = append(points[key], l.Name)
		}
		rules.PickupLocations = points
	}

	categories, err := s.Q.ListSupermarketCategories(ctx)
	if err != nil {
		return pricing.Rules{}, err
	}
	if len(categories) > 0 {
		rules.SupermarketCategories = categories
	}

	return rules, nil
}
