package config

const (
	defaultCachePath  = "~/.metacache/metadata_cache.json"
	defaultCacheTTL   = 30
	defaultLogFormat  = "auto"
	defaultLogLevel   = "info"
	defaultConfigPath = "~/.config/metacache/config.toml"
	projectConfigName = "metacache.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Cache: Cache{
			Enabled: true,
			Path:    defaultCachePath,
			TTLDays: defaultCacheTTL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
