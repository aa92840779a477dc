package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"socialbooster/db/migrations"
)

// ErrDirty is returned when a previous migration failed half way and the
// campaigns schema needs manual repair.
var ErrDirty = errors.New("database is in dirty state")

// Migrate creates or upgrades the campaigns table and its list and stats
// indexes at addr to migrations.Version. Migrating down is never done here;
// a database ahead of the binary is left untouched.
func Migrate(addr string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	defer src.Close()

	mg, err := migrate.NewWithSourceInstance("iofs", src, addr)
	if err != nil {
		return fmt.Errorf("connect for campaigns schema: %w", err)
	}
	defer mg.Close()

	current, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("version %d: %w", current, ErrDirty)
	}
	if current >= migrations.Version {
		return nil
	}

	if err = mg.Migrate(migrations.Version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate campaigns schema to %d: %w", migrations.Version, err)
	}
	return nil
}
