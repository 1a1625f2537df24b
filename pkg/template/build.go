package template

import "fmt"

// Build synthesizes the full stack template from a declarative config.
// Constructs are applied in dependency order: storage and network first, then
// compute, then distribution (which references storage buckets).
func Build(cfg *StackConfig, project, environment, region string) (*Template, error) {
	description := cfg.Description
	if description == "" {
		description = fmt.Sprintf("%s %s stack", project, environment)
	}
	t := New(description)

	if cfg.Storage != nil {
		if err := AddStorage(t, cfg.Storage, environment); err != nil {
			return nil, fmt.Errorf("storage construct: %w", err)
		}
	}
	if cfg.Network != nil {
		if err := AddNetwork(t, cfg.Network, environment); err != nil {
			return nil, fmt.Errorf("network construct: %w", err)
		}
	}
	if cfg.Compute != nil {
		if err := AddCompute(t, cfg.Compute, project, environment, region); err != nil {
			return nil, fmt.Errorf("compute construct: %w", err)
		}
	}
	if cfg.Distribution != nil {
		if err := AddDistribution(t, cfg.Distribution, environment); err != nil {
			return nil, fmt.Errorf("distribution construct: %w", err)
		}
	}

	if len(t.Resources) == 0 {
		return nil, fmt.Errorf("config produced no resources")
	}
	return t, nil
}
