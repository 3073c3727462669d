package config

import (
	"time"

	"github.com/showdownlabs/psclient/showdown"
)

// Config holds client configuration values.
type Config struct {
	Username      string        `mapstructure:"username" yaml:"username"`
	Password      string        `mapstructure:"password" yaml:"password"`
	ServerURL     string        `mapstructure:"server_url" yaml:"server_url"`
	LogLevel      int           `mapstructure:"loglevel" yaml:"loglevel"`
	Throttle      time.Duration `mapstructure:"throttle" yaml:"throttle"`
	Rooms         []string      `mapstructure:"rooms" yaml:"rooms"`
	ChatlogDir    string        `mapstructure:"chatlog_dir" yaml:"chatlog_dir"`
	ChatlogDriver string        `mapstructure:"chatlog_driver" yaml:"chatlog_driver"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		ServerURL:     showdown.DefaultServerURL,
		LogLevel:      2,
		Throttle:      showdown.DefaultThrottle,
		ChatlogDriver: "file",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Username != "" {
		c.Username = other.Username
	}
	if other.Password != "" {
		c.Password = other.Password
	}
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.LogLevel != 0 {
		c.LogLevel = other.LogLevel
	}
	if other.Throttle != 0 {
		c.Throttle = other.Throttle
	}
	if len(other.Rooms) != 0 {
		c.Rooms = other.Rooms
	}
	if other.ChatlogDir != "" {
		c.ChatlogDir = other.ChatlogDir
	}
	if other.ChatlogDriver != "" {
		c.ChatlogDriver = other.ChatlogDriver
	}
}
