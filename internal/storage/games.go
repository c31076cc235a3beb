package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Game is one recorded match.
type Game struct {
	GameID    string
	StartedAt time.Time
	EndedAt   *time.Time
	Winner    types.Mark
	MoveCount int
	Source    string
}

// Finished reports whether the match has been closed.
func (g *Game) Finished() bool {
	return g.EndedAt != nil
}

// GameRepository provides CRUD operations for games.
type GameRepository struct {
	db *DB
}

// NewGameRepository creates a new game repository.
func NewGameRepository(db *DB) *GameRepository {
	return &GameRepository{db: db}
}

// Create opens a new match record and returns its ID.
func (r *GameRepository) Create(source string) (string, error) {
	id := uuid.New().String()
	startedAt := time.Now().UTC()

	_, err := r.db.Exec(`
		INSERT INTO games (game_id, started_at, source)
		VALUES (?, ?, ?)
	`, id, startedAt.Format(timeLayout), source)
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return id, nil
}

// End closes a match. A winner of types.None is stored as NULL.
func (r *GameRepository) End(gameID string, winner types.Mark) error {
	var w any
	if winner.IsPlayer() {
		w = winner.String()
	}

	res, err := r.db.Exec(`
		UPDATE games
		SET ended_at = ?, winner = ?,
		    move_count = (SELECT COUNT(*) FROM moves WHERE moves.game_id = games.game_id)
		WHERE game_id = ? AND ended_at IS NULL
	`, time.Now().UTC().Format(timeLayout), w, gameID)
	if err != nil {
		return fmt.Errorf("failed to end game: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end game: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to end game %s: not found or already ended", gameID)
	}
	return nil
}

// Get retrieves a game by ID. It returns nil if there is no such game.
func (r *GameRepository) Get(gameID string) (*Game, error) {
	row := r.db.QueryRow(`
		SELECT game_id, started_at, ended_at, winner, move_count, source
		FROM games
		WHERE game_id = ?
	`, gameID)

	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

// Resolve finds the game whose ID is id or starts with id. It returns nil
// if nothing matches and an error if the prefix is ambiguous.
func (r *GameRepository) Resolve(id string) (*Game, error) {
	if id == "" || strings.ContainsAny(id, "%_") {
		return nil, nil
	}
	rows, err := r.db.Query(`
		SELECT game_id FROM games
		WHERE game_id = ? OR game_id LIKE ? || '%'
		LIMIT 2
	`, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve game: %w", err)
	}
	var ids []string
	for rows.Next() {
		var gid string
		if err := rows.Scan(&gid); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		ids = append(ids, gid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to resolve game: %w", err)
	}

	switch len(ids) {
	case 0:
		return nil, nil
	case 1:
		return r.Get(ids[0])
	default:
		return nil, fmt.Errorf("game id prefix %q is ambiguous", id)
	}
}

// List retrieves the most recent games, newest first.
func (r *GameRepository) List(limit int) ([]Game, error) {
	rows, err := r.db.Query(`
		SELECT game_id, started_at, ended_at, winner, move_count, source
		FROM games
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return games, nil
}

// Delete deletes a game and its moves.
func (r *GameRepository) Delete(gameID string) error {
	_, err := r.db.Exec("DELETE FROM games WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*Game, error) {
	var g Game
	var startedAt string
	var endedAt, winner sql.NullString

	if err := s.Scan(&g.GameID, &startedAt, &endedAt, &winner, &g.MoveCount, &g.Source); err != nil {
		return nil, err
	}

	g.StartedAt, _ = time.Parse(timeLayout, startedAt)
	if endedAt.Valid {
		t, _ := time.Parse(timeLayout, endedAt.String)
		g.EndedAt = &t
	}
	if winner.Valid {
		g.Winner, _ = types.ParseMark(winner.String)
	}
	return &g, nil
}
