package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagBanks  = flag.Int("banks", -1, "Max skin banks per surface (0 = unlimited)")
	flagMode   = flag.String("mode", "", "Output mode: classic or extended")
	flagOut    = flag.String("out", "", "Output directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagBanks >= 0 {
		cfg.Cook.MaxSkinBanks = *flagBanks
	}
	if *flagMode != "" {
		cfg.Output.Mode = *flagMode
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
}
