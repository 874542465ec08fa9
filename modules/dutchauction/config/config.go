package config

import (
	"time"

	"github.com/mintfall/auction-engine/internal/postgres"
	"github.com/mintfall/auction-engine/modules/dutchauction/sandbox"
	"github.com/mintfall/auction-engine/modules/dutchauction/splits"
)

type Config struct {
	// Postgres is optional; the module runs on the in-memory repository when
	// it is left unconfigured.
	Postgres postgres.Config `mapstructure:"postgres"`
	// Currency is "native" or "token".
	Currency    string         `mapstructure:"currency"`
	MinHalfLife time.Duration  `mapstructure:"min_half_life"`
	MaxHalfLife time.Duration  `mapstructure:"max_half_life"`
	Splits      splits.Config  `mapstructure:"splits"`
	Sandbox     sandbox.Config `mapstructure:"sandbox"`
}
