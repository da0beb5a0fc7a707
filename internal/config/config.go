// Package config handles cooker configuration loading and management.
package config

// Config holds all cooker settings.
type Config struct {
	Cook    CookConfig    `yaml:"cook"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// CookConfig holds geometry partitioning settings.
type CookConfig struct {
	MaxSkinBanks   int  `yaml:"max_skin_banks"`   // Distinct bone-weight sets per draw call (<=0 = unlimited)
	MaterialGroups int  `yaml:"material_groups"`  // Material variant group count (0 = single group)
	UseSecondaryUV bool `yaml:"use_secondary_uv"` // Import a second UV layer when present
}

// OutputConfig holds asset emission settings.
type OutputConfig struct {
	Mode        string `yaml:"mode"`         // "classic" or "extended"
	Dir         string `yaml:"dir"`          // Default output directory
	WorldMatrix bool   `yaml:"world_matrix"` // Emit the object's world matrix in the header
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Cook: CookConfig{
			MaxSkinBanks:   10,
			MaterialGroups: 0,
			UseSecondaryUV: false,
		},
		Output: OutputConfig{
			Mode:        "classic",
			Dir:         ".",
			WorldMatrix: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
