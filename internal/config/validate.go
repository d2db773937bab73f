package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePython(); err != nil {
		return err
	}
	if err := c.validateComponents(); err != nil {
		return err
	}
	if err := c.validateStartup(); err != nil {
		return err
	}
	return c.validateStore()
}

func (c *Config) validatePython() error {
	if strings.TrimSpace(c.Python.Interpreter) == "" {
		return errors.New("python.interpreter must be set")
	}
	return nil
}

func (c *Config) validateComponents() error {
	if strings.TrimSpace(c.Dashboard.Entry) == "" {
		return errors.New("dashboard.entry must be set")
	}
	if strings.TrimSpace(c.Collector.Entry) == "" {
		return errors.New("collector.entry must be set")
	}
	if c.Dashboard.Port < 1 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port must be between 1 and 65535, got %d", c.Dashboard.Port)
	}
	return nil
}

func (c *Config) validateStartup() error {
	if c.Startup.DelaySeconds < 0 {
		return fmt.Errorf("startup.delay_seconds must be >= 0, got %d", c.Startup.DelaySeconds)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Store.Path) == "" {
			return errors.New("store.path must be set for the sqlite driver")
		}
	case "mysql":
		if c.Store.DSN == "" {
			return errors.New("store.dsn must be set for the mysql driver (or export DESKBUDDY_STORE_DSN)")
		}
		if _, err := mysql.ParseDSN(c.Store.DSN); err != nil {
			return fmt.Errorf("store.dsn: %w", err)
		}
	default:
		return fmt.Errorf("store.driver: unsupported value %q (want sqlite or mysql)", c.Store.Driver)
	}
	return nil
}
