package service

import (
	"context"
	"log"
	"time"

	"eventease/backend/internal/repository"
)

// UIConfigService serves the client UI configuration: compiled-in defaults
// deep-merged with the optional appConfig override document. A null (or
// absent) override field means "no override". Store failures fail open to
// the defaults.
type UIConfigService interface {
	GetConfig(ctx context.Context) (map[string]interface{}, error)
}

type uiConfigService struct {
	repo repository.AppConfigRepository
	now  func() time.Time
}

func NewUIConfigService(repo repository.AppConfigRepository, now func() time.Time) UIConfigService {
	if now == nil {
		now = time.Now
	}
	return &uiConfigService{repo: repo, now: now}
}

func (s *uiConfigService) GetConfig(ctx context.Context) (map[string]interface{}, error) {
	config := defaultUIConfig()

	overrides, err := s.repo.GetUIConfig(ctx)
	if err != nil {
		log.Printf("[ui] config read failed, serving defaults: %v", err)
	} else if overrides != nil {
		config = deepMerge(config, overrides)
	}

	config["fetchedAt"] = s.now().UTC().Format(time.RFC3339)
	return config, nil
}

// deepMerge overlays src onto dst. Nested maps merge recursively; nil src
// values are skipped so a stored null never clears a default; everything
// else replaces the default wholesale.
func deepMerge(dst, src map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(dst))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if v == nil {
			continue
		}
		srcMap, srcOK := v.(map[string]interface{})
		dstMap, dstOK := out[k].(map[string]interface{})
		if srcOK && dstOK {
			out[k] = deepMerge(dstMap, srcMap)
			continue
		}
		out[k] = v
	}
	return out
}

func defaultUIConfig() map[string]interface{} {
	return map[string]interface{}{
		"version":        1,
		"heroImageUrl":   nil,
		"welcomeMessage": "Welcome,",
		"heroSubtitle":   "What are you planning today?",
		"sectionVisibility": map[string]interface{}{
			"yourEventsList":  true,
			"upcomingSection": true,
			"featuresSection": true,
		},
		"globalBackground": map[string]interface{}{
			"imageUrl":        nil,
			"colors":          []interface{}{"#E6F9FC", "#F1ECFF"},
			"animateGradient": true,
			"kenBurns":        true,
			"opacity":         1.0,
		},
		"banners": []interface{}{
			map[string]interface{}{
				"id":              "seasonal_home",
				"placement":       "home_top",
				"title":           "Weekend Plans",
				"subtitle":        "Build an itinerary in seconds",
				"ctaText":         "Open Planner",
				"ctaUrl":          "app://planner",
				"imageUrl":        nil,
				"backgroundColor": "#FFF3E0",
				"textColor":       "#7B3F00",
				"priority":        10,
			},
		},
	}
}
