package storage

import (
	"database/sql"
	"fmt"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// MoveRecord represents a committed move in the database.
type MoveRecord struct {
	MoveID   int64
	GameID   string
	Seq      int
	TsMs     int64
	Kind     types.MoveKind
	Player   types.Mark
	Notation string
}

// Move decodes the record back into a move.
func (r MoveRecord) Move() (types.Move, error) {
	m, err := types.ParseMove(r.Notation)
	if err != nil {
		return types.Move{}, fmt.Errorf("failed to decode move %d of game %s: %w", r.Seq, r.GameID, err)
	}
	if m.Kind != r.Kind {
		return types.Move{}, fmt.Errorf("failed to decode move %d of game %s: kind %s does not match %q", r.Seq, r.GameID, r.Kind, r.Notation)
	}
	m.Player = r.Player
	m.Timestamp = r.TsMs
	return m, nil
}

// MoveRepository provides CRUD operations for moves.
type MoveRepository struct {
	db *DB
}

// NewMoveRepository creates a new move repository.
func NewMoveRepository(db *DB) *MoveRepository {
	return &MoveRepository{db: db}
}

// Create appends a move to a game and returns its ID.
func (r *MoveRepository) Create(gameID string, seq int, move types.Move) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO moves (game_id, seq, ts_ms, kind, player, notation)
		VALUES (?, ?, ?, ?, ?, ?)
	`, gameID, seq, move.Timestamp, string(move.Kind), move.Player.String(), move.Notation())
	if err != nil {
		return 0, fmt.Errorf("failed to create move: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get move ID: %w", err)
	}
	return id, nil
}

// CreateBatch appends several moves in a single transaction, numbering
// them from startSeq.
func (r *MoveRepository) CreateBatch(gameID string, moves []types.Move, startSeq int) error {
	return r.db.Transaction(func(tx *sql.Tx) error {
		for i, move := range moves {
			_, err := tx.Exec(`
				INSERT INTO moves (game_id, seq, ts_ms, kind, player, notation)
				VALUES (?, ?, ?, ?, ?, ?)
			`, gameID, startSeq+i, move.Timestamp, string(move.Kind), move.Player.String(), move.Notation())
			if err != nil {
				return fmt.Errorf("failed to create move %d: %w", startSeq+i, err)
			}
		}
		return nil
	})
}

// GetByGame retrieves all moves of a game in play order.
func (r *MoveRepository) GetByGame(gameID string) ([]MoveRecord, error) {
	rows, err := r.db.Query(`
		SELECT move_id, game_id, seq, ts_ms, kind, player, notation
		FROM moves
		WHERE game_id = ?
		ORDER BY seq
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		var kind, player string
		if err := rows.Scan(&m.MoveID, &m.GameID, &m.Seq, &m.TsMs, &kind, &player, &m.Notation); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		m.Kind = types.MoveKind(kind)
		m.Player, _ = types.ParseMark(player)
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}

	return moves, nil
}

// Moves returns the decoded moves of a game, ready to be re-applied.
func (r *MoveRepository) Moves(gameID string) ([]types.Move, error) {
	records, err := r.GetByGame(gameID)
	if err != nil {
		return nil, err
	}
	moves := make([]types.Move, 0, len(records))
	for _, rec := range records {
		m, err := rec.Move()
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// Count returns the number of moves recorded for a game.
func (r *MoveRepository) Count(gameID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM moves WHERE game_id = ?", gameID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count moves: %w", err)
	}
	return count, nil
}
