package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/ecosim/internal/ecosystem"
)

// DB stores ecosystems in a SQLite database.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Debug("database opened", "path", path)
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ecosystems (
		name TEXT PRIMARY KEY,
		temperature REAL NOT NULL,
		humidity REAL NOT NULL,
		water_amount REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS species (
		ecosystem TEXT NOT NULL REFERENCES ecosystems(name),
		name TEXT NOT NULL,
		kind INTEGER NOT NULL,
		diet INTEGER NOT NULL,
		PRIMARY KEY (ecosystem, kind, name)
	);

	CREATE TABLE IF NOT EXISTS interactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		ecosystem TEXT NOT NULL REFERENCES ecosystems(name),
		description TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_interactions_ecosystem ON interactions(ecosystem);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type conditionsRow struct {
	Temperature float64 `db:"temperature"`
	Humidity    float64 `db:"humidity"`
	WaterAmount float64 `db:"water_amount"`
}

type speciesRow struct {
	Name string `db:"name"`
	Kind uint8  `db:"kind"`
	Diet uint8  `db:"diet"`
}

type interactionRow struct {
	ID          string `db:"id"`
	Description string `db:"description"`
	RecordedAt  int64  `db:"recorded_at"`
}

// List returns all ecosystem names.
func (db *DB) List() ([]string, error) {
	var names []string
	err := db.conn.Select(&names, "SELECT name FROM ecosystems ORDER BY name")
	return names, err
}

// Exists reports whether an ecosystem row exists.
func (db *DB) Exists(name string) (bool, error) {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM ecosystems WHERE name = ?", name); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts the ecosystem, its conditions and any species it already has.
func (db *DB) Create(eco *ecosystem.Ecosystem) error {
	exists, err := db.Exists(eco.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ecosystem.ErrEcosystemExists, eco.Name)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	c := eco.Conditions()
	if _, err := tx.Exec(
		"INSERT INTO ecosystems (name, temperature, humidity, water_amount) VALUES (?, ?, ?, ?)",
		eco.Name, c.Temperature, c.Humidity, c.WaterAmount,
	); err != nil {
		return fmt.Errorf("insert ecosystem %s: %w", eco.Name, err)
	}
	if err := insertSpecies(tx, eco); err != nil {
		return err
	}

	return tx.Commit()
}

// Load reads an ecosystem with its species and full interaction log.
func (db *DB) Load(name string) (*ecosystem.Ecosystem, error) {
	var cond conditionsRow
	err := db.conn.Get(&cond,
		"SELECT temperature, humidity, water_amount FROM ecosystems WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ecosystem.ErrEcosystemNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	eco := ecosystem.New(name, ecosystem.Conditions{
		Temperature: cond.Temperature,
		Humidity:    cond.Humidity,
		WaterAmount: cond.WaterAmount,
	})

	var species []speciesRow
	if err := db.conn.Select(&species,
		"SELECT name, kind, diet FROM species WHERE ecosystem = ?", name); err != nil {
		return nil, fmt.Errorf("load species: %w", err)
	}
	for _, s := range species {
		eco.AddSpecies(ecosystem.Species{
			Name: s.Name,
			Kind: ecosystem.Kind(s.Kind),
			Diet: ecosystem.Diet(s.Diet),
		})
	}

	var log []interactionRow
	if err := db.conn.Select(&log,
		"SELECT id, description, recorded_at FROM interactions WHERE ecosystem = ? ORDER BY seq", name); err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	for _, row := range log {
		eco.Record(ecosystem.Interaction{
			ID:         row.ID,
			Text:       row.Description,
			RecordedAt: time.Unix(0, row.RecordedAt).UTC(),
		})
	}

	return eco, nil
}

// SaveSpecies writes the ecosystem's species (full replace).
func (db *DB) SaveSpecies(eco *ecosystem.Ecosystem) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM species WHERE ecosystem = ?", eco.Name); err != nil {
		return err
	}
	if err := insertSpecies(tx, eco); err != nil {
		return err
	}

	return tx.Commit()
}

func insertSpecies(tx *sqlx.Tx, eco *ecosystem.Ecosystem) error {
	stmt, err := tx.Preparex("INSERT INTO species (ecosystem, name, kind, diet) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range eco.Species() {
		if _, err := stmt.Exec(eco.Name, s.Name, uint8(s.Kind), uint8(s.Diet)); err != nil {
			return fmt.Errorf("insert species %s: %w", s.Name, err)
		}
	}
	return nil
}

// SaveConditions replaces the conditions of an existing ecosystem.
func (db *DB) SaveConditions(name string, c ecosystem.Conditions) error {
	res, err := db.conn.Exec(
		"UPDATE ecosystems SET temperature = ?, humidity = ?, water_amount = ? WHERE name = ?",
		c.Temperature, c.Humidity, c.WaterAmount, name,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ecosystem.ErrEcosystemNotFound, name)
	}
	return nil
}

// AppendInteraction inserts a log entry, assigning it an ID and timestamp.
func (db *DB) AppendInteraction(name string, in *ecosystem.Interaction) error {
	in.ID = uuid.NewString()
	in.RecordedAt = time.Now().UTC()

	_, err := db.conn.Exec(
		"INSERT INTO interactions (id, ecosystem, description, recorded_at) VALUES (?, ?, ?, ?)",
		in.ID, name, in.Text, in.RecordedAt.UnixNano(),
	)
	return err
}
