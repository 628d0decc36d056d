package config

import "time"

// DbSettings selects and configures the durable event queue.
type DbSettings struct {
	Type       string        `mapstructure:"type" validate:"required,oneof=postgres spanner mongo redis memory"`
	DSN        string        `mapstructure:"dsn" validate:"required_if=Type postgres"`
	URI        string        `mapstructure:"uri" validate:"required_if=Type spanner,required_if=Type mongo,required_if=Type redis"`
	DBName     string        `mapstructure:"db_name"`
	Collection string        `mapstructure:"collection"`
	EventTTL   time.Duration `mapstructure:"event_ttl"` // zero keeps events forever
}
