package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "pumpsign/backend/libs/config"
)

// Config defines fleet service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"FLEET_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"FLEET_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"FLEET_REDIS_ADDR"`
		Password string `yaml:"password" env:"FLEET_REDIS_PASSWORD"`
	} `yaml:"redis"`
	Device struct {
		Port              int `yaml:"port" env:"FLEET_DEVICE_PORT"`
		ConnectTimeoutMS  int `yaml:"connectTimeoutMs" env:"FLEET_DEVICE_CONNECT_TIMEOUT_MS"`
		ResponseTimeoutMS int `yaml:"responseTimeoutMs" env:"FLEET_DEVICE_RESPONSE_TIMEOUT_MS"`
	} `yaml:"device"`
	Monitor struct {
		IntervalSeconds    int  `yaml:"intervalSeconds" env:"FLEET_MONITOR_INTERVAL"`
		FailureThreshold   uint `yaml:"failureThreshold" env:"FLEET_MONITOR_FAILURE_THRESHOLD"`
		PingTimeoutSeconds int  `yaml:"pingTimeoutSeconds" env:"FLEET_MONITOR_PING_TIMEOUT"`
	} `yaml:"monitor"`
	Provisioning struct {
		APIURL string `yaml:"apiUrl" env:"FLEET_API_URL"`
	} `yaml:"provisioning"`
}

// Load uses shared config loader and validates required fields.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8084"
	cfg.Device.Port = 5005
	cfg.Device.ConnectTimeoutMS = 5000
	cfg.Device.ResponseTimeoutMS = 3000
	cfg.Monitor.IntervalSeconds = 30
	cfg.Monitor.FailureThreshold = 3
	cfg.Monitor.PingTimeoutSeconds = 2

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database DSN is required")
	}
	if strings.TrimSpace(cfg.Provisioning.APIURL) == "" {
		return nil, errors.New("config: provisioning API URL is required")
	}

	return cfg, nil
}

// HTTPAddress returns :port style address.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8084"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ConnectTimeout returns the device connect timeout.
func (c *Config) ConnectTimeout() time.Duration {
	if c.Device.ConnectTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Device.ConnectTimeoutMS) * time.Millisecond
}

// ResponseTimeout returns the device response timeout.
func (c *Config) ResponseTimeout() time.Duration {
	if c.Device.ResponseTimeoutMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Device.ResponseTimeoutMS) * time.Millisecond
}

// HeartbeatInterval returns the monitor probe interval.
func (c *Config) HeartbeatInterval() time.Duration {
	if c.Monitor.IntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Monitor.IntervalSeconds) * time.Second
}

// PingTimeout returns the per-probe deadline.
func (c *Config) PingTimeout() time.Duration {
	if c.Monitor.PingTimeoutSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.Monitor.PingTimeoutSeconds) * time.Second
}
