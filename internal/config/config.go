// Package config handles objtool configuration loading and management.
package config

// Config holds all objtool settings.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig holds settings for reading OBJ files.
type InputConfig struct {
	Encoding string `yaml:"encoding"` // Charset of source files, see pkg/encoding
}

// OutputConfig holds settings for writing OBJ files.
type OutputConfig struct {
	Overwrite bool `yaml:"overwrite"` // Allow convert to replace an existing file
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Encoding: "utf-8",
		},
		Output: OutputConfig{
			Overwrite: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
