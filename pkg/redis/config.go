package redis

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds the connection settings for a single Redis node
type Config struct {
	Host     string
	Port     int
	Password string
	Database int

	// PoolSize caps open connections, MinIdle keeps a few warm for claim bursts at the top of the minute
	PoolSize int
	MinIdle  int
	// Timeout bounds dialing, reads and writes alike
	Timeout time.Duration
}

// NewRedisConfig returns settings for a local node with a small pool
func NewRedisConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     6379,
		PoolSize: 10,
		MinIdle:  1,
		Timeout:  3 * time.Second,
	}
}

func (c *Config) WithHost(host string) *Config {
	c.Host = host
	return c
}

func (c *Config) WithPort(port int) *Config {
	c.Port = port
	return c
}

func (c *Config) WithPassword(password string) *Config {
	c.Password = password
	return c
}

func (c *Config) WithDatabase(database int) *Config {
	c.Database = database
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// Addr is the host:port pair handed to the driver
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate rejects settings the driver would only fail on at first use
func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("host cannot be empty")
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.Database < 0 || c.Database > 15:
		return fmt.Errorf("invalid database %d", c.Database)
	case c.PoolSize < 0 || c.MinIdle < 0:
		return fmt.Errorf("pool sizes must be non-negative")
	case c.Timeout < 0:
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}
