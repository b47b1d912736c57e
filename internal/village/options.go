package village

import (
	"fmt"
	"strings"
)

// Option bounds and defaults. A generation run rejects any option outside
// its documented range rather than guessing a replacement.
const (
	MinTopTagCount     = 3
	MaxTopTagCount     = 20
	DefaultTopTagCount = 10

	MinMaxVillagers     = 10
	MaxMaxVillagers     = 500
	DefaultMaxVillagers = 100

	DefaultPlazaRadius       = 150.0
	DefaultZoneInnerRadius   = 200.0
	DefaultZoneWidth         = 400.0
	DefaultHousesPerVillager = 0.3
	DefaultDecorationDensity = 0.1
)

// Options configures a generation run.
type Options struct {
	// Seed drives all pseudo-randomness. Required.
	Seed string `json:"seed"`
	// TopTagCount is how many top tags become zones (3-20).
	TopTagCount int `json:"topTagCount"`
	// MaxVillagers caps the total villager count (10-500).
	MaxVillagers int `json:"maxVillagers"`
	// PlazaRadius is half the side of the central plaza square.
	PlazaRadius float64 `json:"plazaRadius"`
	// ZoneInnerRadius is the structure-free clearance around the plaza
	// center; houses and zone decorations never land inside it.
	ZoneInnerRadius float64 `json:"zoneInnerRadius"`
	// ZoneWidth is the side of every zone square.
	ZoneWidth float64 `json:"zoneWidth"`
	// HousesPerVillager is the probability a villager gets a house [0,1].
	HousesPerVillager float64 `json:"housesPerVillager"`
	// DecorationDensity scales decoration counts [0,1].
	DecorationDensity float64 `json:"decorationDensity"`
	// ExcludedFolders and ExcludedTags are forwarded to the vault scanner.
	ExcludedFolders []string `json:"excludedFolders,omitempty"`
	ExcludedTags    []string `json:"excludedTags,omitempty"`
}

// DefaultOptions returns Options with every tunable at its default and the
// given seed.
func DefaultOptions(seed string) Options {
	return Options{
		Seed:              seed,
		TopTagCount:       DefaultTopTagCount,
		MaxVillagers:      DefaultMaxVillagers,
		PlazaRadius:       DefaultPlazaRadius,
		ZoneInnerRadius:   DefaultZoneInnerRadius,
		ZoneWidth:         DefaultZoneWidth,
		HousesPerVillager: DefaultHousesPerVillager,
		DecorationDensity: DefaultDecorationDensity,
	}
}

// Validate checks all option invariants.
//
// Postcondition: Returns nil if the options are valid, or an error naming
// every violated option and why.
func (o Options) Validate() error {
	var errs []string

	if o.Seed == "" {
		errs = append(errs, "seed must not be empty")
	}
	if o.TopTagCount < MinTopTagCount || o.TopTagCount > MaxTopTagCount {
		errs = append(errs, fmt.Sprintf("topTagCount must be %d-%d, got %d",
			MinTopTagCount, MaxTopTagCount, o.TopTagCount))
	}
	if o.MaxVillagers < MinMaxVillagers || o.MaxVillagers > MaxMaxVillagers {
		errs = append(errs, fmt.Sprintf("maxVillagers must be %d-%d, got %d",
			MinMaxVillagers, MaxMaxVillagers, o.MaxVillagers))
	}
	if o.PlazaRadius <= 0 {
		errs = append(errs, fmt.Sprintf("plazaRadius must be > 0, got %v", o.PlazaRadius))
	}
	if o.ZoneInnerRadius <= 0 {
		errs = append(errs, fmt.Sprintf("zoneInnerRadius must be > 0, got %v", o.ZoneInnerRadius))
	}
	if o.PlazaRadius > 0 && o.ZoneInnerRadius > 0 && o.ZoneInnerRadius < o.PlazaRadius {
		errs = append(errs, fmt.Sprintf("zoneInnerRadius must be >= plazaRadius, got %v < %v",
			o.ZoneInnerRadius, o.PlazaRadius))
	}
	if o.ZoneWidth <= 0 {
		errs = append(errs, fmt.Sprintf("zoneWidth must be > 0, got %v", o.ZoneWidth))
	}
	// The plaza square occupies one grid cell, so it must fit the cell side.
	if o.PlazaRadius > 0 && o.ZoneWidth > 0 && 2*o.PlazaRadius > o.ZoneWidth {
		errs = append(errs, fmt.Sprintf("plazaRadius must not exceed zoneWidth/2 so the plaza fits its grid cell, got %v > %v",
			o.PlazaRadius, o.ZoneWidth/2))
	}
	if o.HousesPerVillager < 0 || o.HousesPerVillager > 1 {
		errs = append(errs, fmt.Sprintf("housesPerVillager must be in [0,1], got %v", o.HousesPerVillager))
	}
	if o.DecorationDensity < 0 || o.DecorationDensity > 1 {
		errs = append(errs, fmt.Sprintf("decorationDensity must be in [0,1], got %v", o.DecorationDensity))
	}

	if len(errs) > 0 {
		return fmt.Errorf("village options invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}
