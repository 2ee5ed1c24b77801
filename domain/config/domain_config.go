package config

// DomainConfig holds the tunable business limits of the graph and tag core
type DomainConfig struct {
	// Dimension constraints
	MaxNoteLength  int
	AllowSelfLinks bool

	// Tag constraints
	MaxLabelsPerSync int

	// Listing limits
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNoteLength:    2000,
		AllowSelfLinks:   true,
		MaxLabelsPerSync: 100,
		DefaultPageSize:  20,
		MaxPageSize:      100,
	}
}

// ProductionDomainConfig tightens listing limits for production traffic
func ProductionDomainConfig() *DomainConfig {
	cfg := DefaultDomainConfig()
	cfg.MaxPageSize = 50
	return cfg
}

// LoadDomainConfig picks the configuration for an environment
func LoadDomainConfig(environment string) *DomainConfig {
	if environment == "production" {
		return ProductionDomainConfig()
	}
	return DefaultDomainConfig()
}

// Validate checks that the limits are usable
func (c *DomainConfig) Validate() error {
	if c.MaxNoteLength <= 0 {
		return errInvalid("MaxNoteLength must be positive")
	}
	if c.MaxLabelsPerSync <= 0 {
		return errInvalid("MaxLabelsPerSync must be positive")
	}
	if c.DefaultPageSize <= 0 || c.MaxPageSize < c.DefaultPageSize {
		return errInvalid("page size limits are inconsistent")
	}
	return nil
}

type configError string

func (e configError) Error() string { return "domain config: " + string(e) }

func errInvalid(msg string) error { return configError(msg) }
