package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"
)

//go:embed migrations/*/up.sql migrations/*/down.sql
var migrationsFS embed.FS

var migrationDirPattern = regexp.MustCompile(`^(\d+)_[a-z0-9_]+$`)

type SchemaVersion uint64

type SchemaMigration struct {
	Version   SchemaVersion `gorm:"primaryKey"`
	AppliedAt time.Time     `gorm:"autoCreateTime"`
}

// Migration is one embedded migrations/<version>_<name> directory.
type Migration struct {
	Version SchemaVersion
	Name    string
}

func (migration Migration) UpSQL() (string, error) {
	return migration.read("up.sql")
}

func (migration Migration) DownSQL() (string, error) {
	return migration.read("down.sql")
}

func (migration Migration) read(file string) (string, error) {
	data, err := fs.ReadFile(migrationsFS, path.Join("migrations", migration.Name, file))
	if err != nil {
		return "", fmt.Errorf("failed to read %s for migration %s: %w", file, migration.Name, err)
	}
	return string(data), nil
}

// Migrations lists the embedded migrations in version order.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		match := migrationDirPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("invalid migration directory name: %s", entry.Name())
		}

		version, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version %s: %w", match[1], err)
		}

		migrations = append(migrations, Migration{Version: SchemaVersion(version), Name: entry.Name()})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", migrations[i].Version)
		}
	}

	return migrations, nil
}

func CurrentSchemaVersion(db *gorm.DB) (SchemaVersion, error) {
	var versions []SchemaVersion
	err := db.Model(&SchemaMigration{}).
		Order("version desc").
		Limit(1).
		Pluck("version", &versions).
		Error
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, nil
	}
	return versions[0], nil
}

// Migrate applies every migration newer than the recorded schema version,
// each in its own transaction.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current, err := CurrentSchemaVersion(db)
	if err != nil {
		return err
	}

	migrations, err := Migrations()
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		sql, err := migration.UpSQL()
		if err != nil {
			return err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(sql).Error; err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Version: migration.Version}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Name, err)
		}
	}

	return nil
}

// Rollback reverts applied migrations newer than target, newest first.
func Rollback(db *gorm.DB, target SchemaVersion) error {
	current, err := CurrentSchemaVersion(db)
	if err != nil {
		return err
	}

	migrations, err := Migrations()
	if err != nil {
		return err
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if migration.Version <= target || migration.Version > current {
			continue
		}

		sql, err := migration.DownSQL()
		if err != nil {
			return err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(sql).Error; err != nil {
				return err
			}
			return tx.Delete(&SchemaMigration{}, "version = ?", migration.Version).Error
		})
		if err != nil {
			return fmt.Errorf("failed to revert migration %s: %w", migration.Name, err)
		}
	}

	return nil
}
