package config

// RoutingConfig describes how to reach the external routing engine and which
// travel parameters to send with every request unless a point carries overrides.
type RoutingConfig struct {
	BaseURL         string   `yaml:"baseURL" validate:"required,url"`
	TimeoutMS       int      `yaml:"timeoutMS" validate:"gte=0"`
	Modes           []string `yaml:"modes"`
	MaxWalkDistance float64  `yaml:"maxWalkDistance" validate:"gte=0"`
	WalkSpeed       float64  `yaml:"walkSpeed" validate:"gte=0"`
	BikeSpeed       float64  `yaml:"bikeSpeed" validate:"gte=0"`
	WalkReluctance  float64  `yaml:"walkReluctance" validate:"gte=0"`
	MinTransferTime int      `yaml:"minTransferTime" validate:"gte=0"`
	MaxTransfers    int      `yaml:"maxTransfers" validate:"gte=0"`
	Wheelchair      bool     `yaml:"wheelchair"`
	ArriveBy        bool     `yaml:"arriveBy"`
}

// AnalysisConfig contains pipeline tuning knobs.
type AnalysisConfig struct {
	// CutoffsMin are the isochrone cutoffs in minutes, ascending.
	CutoffsMin []int `yaml:"cutoffsMin" validate:"omitempty,dive,gt=0"`
	// SimplifyTolerance is the geometry simplification epsilon in degrees.
	SimplifyTolerance float64 `yaml:"simplifyTolerance" validate:"gte=0"`
	// MaxPairDistanceKM drops origin/destination pairs farther apart than this
	// straight-line distance before any request is made. Zero disables the filter.
	MaxPairDistanceKM float64 `yaml:"maxPairDistanceKM" validate:"gte=0"`
}

// CheckpointConfig controls periodic flushing of in-progress batch results.
type CheckpointConfig struct {
	Dir string `yaml:"dir"`
	// Every flushes the matrix and failure list after this many successful
	// origins. Zero disables checkpointing.
	Every int `yaml:"every" validate:"gte=0"`
}

// GeocoderConfig holds the postcode lookup providers. The fallback provider is
// only consulted when the primary lookup fails.
type GeocoderConfig struct {
	PrimaryURL  string `yaml:"primaryURL" validate:"omitempty,url"`
	FallbackURL string `yaml:"fallbackURL" validate:"omitempty,url"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Routing    RoutingConfig    `yaml:"routing" validate:"required"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Geocoder   GeocoderConfig   `yaml:"geocoder"`
}
