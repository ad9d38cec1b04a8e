package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tutorwise/signal-analytics/internal/domain"
)

var ErrInvalidProfile = errors.New("invalid analytics profile")

// Profile holds the analytics definitions that are not environment specific
type Profile struct {
	FunnelStages            []FunnelStageDef `yaml:"funnel_stages"`
	AttributableTargetTypes []string         `yaml:"attributable_target_types"`
	BlogSourceComponents    []string         `yaml:"blog_source_components"`
	ListingTargetType       string           `yaml:"listing_target_type"`
	ListingMaturity         ListingMaturity  `yaml:"listing_maturity"`
	DefaultModel            string           `yaml:"default_model"`
}

// FunnelStageDef matches any event whose type is listed
type FunnelStageDef struct {
	Name       string   `yaml:"name"`
	EventTypes []string `yaml:"event_types"`
}

// ListingMaturity decides which listings enter a category baseline
type ListingMaturity struct {
	MinAgeDays     int      `yaml:"min_age_days"`
	MatureStatuses []string `yaml:"mature_statuses"`
}

// DefaultProfile mirrors the dashboard's view → interaction → save → booking funnel
func DefaultProfile() Profile {
	return Profile{
		FunnelStages: []FunnelStageDef{
			{Name: "view", EventTypes: []string{"view"}},
			{Name: "interaction", EventTypes: []string{"interaction"}},
			{Name: "save", EventTypes: []string{"save"}},
			{Name: "booking", EventTypes: []string{"booking"}},
		},
		AttributableTargetTypes: []string{"article"},
		BlogSourceComponents:    []string{"blog", "blog_embed", "blog_cta"},
		ListingTargetType:       "listing",
		ListingMaturity: ListingMaturity{
			MinAgeDays:     14,
			MatureStatuses: []string{"published"},
		},
		DefaultModel: "last_touch",
	}
}

// LoadProfile reads a YAML profile from path. Fields missing from the file
// keep their DefaultProfile value. An empty path returns the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read analytics profile: %w", err)
	}

	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("failed to parse analytics profile: %w", err)
	}

	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}

	return profile, nil
}

// Validate checks stage definitions and maturity settings
func (p Profile) Validate() error {
	if len(p.FunnelStages) == 0 {
		return fmt.Errorf("%w: at least one funnel stage is required", ErrInvalidProfile)
	}

	seen := make(map[string]bool, len(p.FunnelStages))
	for i, stage := range p.FunnelStages {
		if stage.Name == "" {
			return fmt.Errorf("%w: funnel stage %d has no name", ErrInvalidProfile, i+1)
		}
		if seen[stage.Name] {
			return fmt.Errorf("%w: duplicate funnel stage %q", ErrInvalidProfile, stage.Name)
		}
		seen[stage.Name] = true

		if len(stage.EventTypes) == 0 {
			return fmt.Errorf("%w: funnel stage %q matches no event types", ErrInvalidProfile, stage.Name)
		}
		for _, et := range stage.EventTypes {
			if _, ok := domain.ParseEventType(et); !ok {
				return fmt.Errorf("%w: funnel stage %q: unknown event type %q", ErrInvalidProfile, stage.Name, et)
			}
		}
	}

	if len(p.AttributableTargetTypes) == 0 {
		return fmt.Errorf("%w: attributable_target_types must not be empty", ErrInvalidProfile)
	}

	if p.ListingMaturity.MinAgeDays < 0 {
		return fmt.Errorf("%w: listing_maturity.min_age_days must be >= 0", ErrInvalidProfile)
	}

	switch p.DefaultModel {
	case "first_touch", "last_touch", "linear":
	default:
		return fmt.Errorf("%w: unsupported default_model %q", ErrInvalidProfile, p.DefaultModel)
	}

	return nil
}
