// Package config provides configuration management for getart.
//
// This package handles:
//   - Default configuration values
//   - Loading settings from a config file and GETART_* environment
//     variables (via viper)
//   - Saving settings back to a file
//   - Conversion to the option types of other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// 10 second timeout, downloads to the current directory,
//	// at most 64 manifest fetches per video
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/getart.json")
//	// A missing file yields the defaults; GETART_TIMEOUT=30s and
//	// friends override whatever the file says.
//
// # Saving Settings
//
//	settings.OutputDir = "/home/me/Pictures/Artwork"
//	err := settings.Save("/path/to/getart.yaml")
//
// The file format follows the extension (json, yaml, toml).
package config
