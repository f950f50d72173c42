// Package config loads tabprofile configuration.
//
// Settings come from a YAML file, an optional .env file and the process
// environment, in that order of precedence (later wins). Viper does the
// merging; godotenv loads .env files.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("tabprofile", &cfg, config.WithConfigFile(path))
//
// Environment variables carry the upper-cased service name as prefix and use
// underscores for nesting, e.g. TABPROFILE_PIPELINE_MAX_PARALLEL=4.
package config
