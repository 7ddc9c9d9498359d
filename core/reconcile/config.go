package reconcile

import "fmt"

// Config holds the media tree settings.
type Config struct {
	// Root is the media directory to reconcile.
	Root string `mapstructure:"root" default:"pub/media/catalog" validate:"required"`
	// Include lists the enabled areas in classification order. Empty enables all.
	Include []string `mapstructure:"include" default:"product,cache"`
	// Limit stops enumeration after this many classified files. Zero or below is unbounded.
	Limit int `mapstructure:"limit" default:"-1"`
	// CaseInsensitive folds keys and references to lower case.
	CaseInsensitive bool `mapstructure:"case_insensitive" default:"false"`
	// Areas registers extra derived areas as name=pattern pairs.
	Areas []string `mapstructure:"areas" default:""`
}

// AreaTable builds the built-in areas plus the configured ones.
func (c Config) AreaTable() (*AreaTable, error) {
	table := DefaultAreas()
	for _, spec := range c.Areas {
		if spec == "" {
			continue
		}
		if err := table.RegisterSpec(spec); err != nil {
			return nil, fmt.Errorf("media.areas: %w", err)
		}
	}
	return table, nil
}

// Options returns scan options seeded from the configuration. The result is
// a dry run; callers opt in to removal explicitly.
func (c Config) Options() (Options, error) {
	table, err := c.AreaTable()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Root:            c.Root,
		Include:         c.Include,
		Limit:           c.Limit,
		CaseInsensitive: c.CaseInsensitive,
		DryRun:          true,
		Areas:           table,
	}, nil
}
