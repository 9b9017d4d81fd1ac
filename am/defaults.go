package am

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Generation defaults
	v.SetDefault("generate.helpers_root", "Scripts/Helpers")
	v.SetDefault("generate.typescript", true)
	v.SetDefault("generate.engines", []string{})
	v.SetDefault("generate.async_suffix", "JsAsync")
	v.SetDefault("generate.behaviour_base", "MonoBehaviour")
	v.SetDefault("generate.on_error", OnErrorFailFast)

	// Build defaults
	v.SetDefault("build.raw_scripts_root", "Scripts/Raw")
	v.SetDefault("build.built_scripts_root", "Scripts/Built")
	v.SetDefault("build.dev", false)
	v.SetDefault("build.command", "./builder.sh")
	v.SetDefault("build.timeout_seconds", 3600) // one hour bounded wait

	// Watch defaults
	v.SetDefault("watch.debounce_ms", 500)
	v.SetDefault("watch.min_interval_seconds", 2)

	// Log defaults
	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", "everforest")
}
