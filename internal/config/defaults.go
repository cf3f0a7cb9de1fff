package config

import "time"

// Default values
const (
	DefaultTimeout    = 5 * time.Second
	DefaultFormat     = FormatText
	DefaultColor      = true
	DefaultConfigFile = "imprun.yaml"
	DefaultEnvFile    = ".env"
	DefaultOutputPath = ""
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Environment variable names
const (
	EnvTimeout         = "IMPRUN_TIMEOUT"
	EnvAllowDuplicates = "IMPRUN_ALLOW_DUPLICATES"
	EnvFormat          = "IMPRUN_FORMAT"
	EnvColor           = "IMPRUN_COLOR"
	EnvOutput          = "IMPRUN_OUTPUT"
	EnvVerbose         = "IMPRUN_VERBOSE"
)
