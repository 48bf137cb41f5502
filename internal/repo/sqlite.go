package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/miradorstack/trigger-rca/internal/models"
)

// SQLiteStore persists logged foods and symptoms in a local SQLite file and serves them as
// an occurrence source.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single writer keeps modernc's locking predictable
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialise schema: %w", err)
	}
	return store, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS food_occurrences (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        quantity TEXT NOT NULL DEFAULT '',
        notes TEXT NOT NULL DEFAULT '',
        occurred_at INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS symptom_occurrences (
        id TEXT PRIMARY KEY,
        symptom_type TEXT NOT NULL,
        intensity INTEGER NOT NULL CHECK (intensity BETWEEN 1 AND 10),
        notes TEXT NOT NULL DEFAULT '',
        occurred_at INTEGER NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_food_occurred_at ON food_occurrences(occurred_at);
    CREATE INDEX IF NOT EXISTS idx_symptom_occurred_at ON symptom_occurrences(occurred_at);
    `
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveFoods validates and upserts foods in one transaction. Missing IDs are generated.
func (s *SQLiteStore) SaveFoods(ctx context.Context, foods []models.FoodOccurrence) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
        INSERT OR REPLACE INTO food_occurrences (id, name, quantity, notes, occurred_at)
        VALUES (?, ?, ?, ?, ?)
    `
	for _, food := range foods {
		if err := food.Validate(); err != nil {
			return err
		}
		if food.ID == "" {
			food.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, food.ID, food.Name, food.Quantity, food.Notes, food.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("insert food %s: %w", food.ID, err)
		}
	}
	return tx.Commit()
}

// SaveSymptoms validates and upserts symptoms in one transaction. Missing IDs are generated.
func (s *SQLiteStore) SaveSymptoms(ctx context.Context, symptoms []models.SymptomOccurrence) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
        INSERT OR REPLACE INTO symptom_occurrences (id, symptom_type, intensity, notes, occurred_at)
        VALUES (?, ?, ?, ?, ?)
    `
	for _, symptom := range symptoms {
		if err := symptom.Validate(); err != nil {
			return err
		}
		if symptom.ID == "" {
			symptom.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, symptom.ID, symptom.Type, symptom.Intensity, symptom.Notes, symptom.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("insert symptom %s: %w", symptom.ID, err)
		}
	}
	return tx.Commit()
}

// FoodsInRange returns foods logged in [start, end].
func (s *SQLiteStore) FoodsInRange(ctx context.Context, start, end time.Time) ([]models.FoodOccurrence, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, quantity, notes, occurred_at
        FROM food_occurrences
        WHERE occurred_at BETWEEN ? AND ?
    `, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("query foods: %w", err)
	}
	defer rows.Close()

	var foods []models.FoodOccurrence
	for rows.Next() {
		var (
			food models.FoodOccurrence
			at   int64
		)
		if err := rows.Scan(&food.ID, &food.Name, &food.Quantity, &food.Notes, &at); err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		food.Timestamp = time.Unix(0, at).UTC()
		foods = append(foods, food)
	}
	return foods, rows.Err()
}

// SymptomsInRange returns symptoms logged in [start, end].
func (s *SQLiteStore) SymptomsInRange(ctx context.Context, start, end time.Time) ([]models.SymptomOccurrence, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, symptom_type, intensity, notes, occurred_at
        FROM symptom_occurrences
        WHERE occurred_at BETWEEN ? AND ?
    `, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("query symptoms: %w", err)
	}
	defer rows.Close()

	var symptoms []models.SymptomOccurrence
	for rows.Next() {
		var (
			symptom models.SymptomOccurrence
			at      int64
		)
		if err := rows.Scan(&symptom.ID, &symptom.Type, &symptom.Intensity, &symptom.Notes, &at); err != nil {
			return nil, fmt.Errorf("scan symptom: %w", err)
		}
		symptom.Timestamp = time.Unix(0, at).UTC()
		symptoms = append(symptoms, symptom)
	}
	return symptoms, rows.Err()
}
