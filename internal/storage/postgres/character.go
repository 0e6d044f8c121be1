package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/emberfall/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterNameTaken is returned when creating a character with a name
// that already exists.
var ErrCharacterNameTaken = errors.New("character name already taken")

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

const characterColumns = `
	id, name, level, experience, gold, location,
	strength, dexterity, constitution, intelligence, wisdom, charisma,
	max_hp, current_hp, max_mana, current_mana, created_at, updated_at`

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	err := row.Scan(
		&c.ID, &c.Name, &c.Level, &c.Experience, &c.Gold, &c.Location,
		&c.Stats.Strength, &c.Stats.Dexterity, &c.Stats.Constitution,
		&c.Stats.Intelligence, &c.Stats.Wisdom, &c.Stats.Charisma,
		&c.MaxHP, &c.CurrentHP, &c.MaxMana, &c.CurrentMana,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new character and returns it with ID and timestamps set.
//
// Precondition: c.Name must be non-empty and not already in use.
// Postcondition: Returns the created character with ID set, or
// ErrCharacterNameTaken on duplicate.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	out, err := scanCharacter(r.db.QueryRow(ctx, `
		INSERT INTO characters
			(name, level, experience, gold, location,
			 strength, dexterity, constitution, intelligence, wisdom, charisma,
			 max_hp, current_hp, max_mana, current_mana)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING`+characterColumns,
		c.Name, c.Level, c.Experience, c.Gold, c.Location,
		c.Stats.Strength, c.Stats.Dexterity, c.Stats.Constitution,
		c.Stats.Intelligence, c.Stats.Wisdom, c.Stats.Charisma,
		c.MaxHP, c.CurrentHP, c.MaxMana, c.CurrentMana,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// GetByID retrieves a character by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT`+characterColumns+` FROM characters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// GetByName retrieves a character by its unique name.
//
// Precondition: name must be non-empty.
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByName(ctx context.Context, name string) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT`+characterColumns+` FROM characters WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character by name: %w", err)
	}
	return c, nil
}

// List returns all characters ordered by creation time.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT`+characterColumns+` FROM characters ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// State captures the mutable fields persisted after a play session.
type State struct {
	Location    string
	CurrentHP   int
	CurrentMana int
	Gold        int
	Experience  int
	Level       int
}

// SaveState persists a character's session-mutable state.
//
// Precondition: id must be > 0; s.Location must be a valid room ID.
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row
// was updated.
func (r *CharacterRepository) SaveState(ctx context.Context, id int64, s State) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters
		SET location = $2, current_hp = $3, current_mana = $4,
		    gold = $5, experience = $6, level = $7, updated_at = NOW()
		WHERE id = $1`,
		id, s.Location, s.CurrentHP, s.CurrentMana, s.Gold, s.Experience, s.Level,
	)
	if err != nil {
		return fmt.Errorf("saving character state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
