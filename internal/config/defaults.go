package config

import "github.com/spf13/viper"

// setDefaults installs the values a bare hookswapd runs with.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 5005)
	v.SetDefault("server.websocket", true)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "data")
	v.SetDefault("storage.cache_size", 16384)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")

	v.SetDefault("engine.seconds_per_day", 86400)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
