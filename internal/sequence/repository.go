package sequence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for sequence and execution
// persistence. Sequence writes span two tables (the header and its
// ordered operations) and are transactional.
type Repository interface {
	// Create inserts a sequence with its ordered operations and returns
	// the new sequence ID.
	Create(ctx context.Context, deviceID int64, name string, moves []int) (int64, error)

	// GetByID retrieves a sequence with its operations in order.
	// Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*Sequence, error)

	// List retrieves sequences, newest first. A deviceID of 0 means all
	// devices.
	List(ctx context.Context, deviceID int64) ([]Sequence, error)

	// Update replaces a sequence's name and operations atomically.
	// Returns ErrNotFound if absent.
	Update(ctx context.Context, id int64, name string, moves []int) error

	// Delete removes a sequence, its operations and its executions.
	// Returns ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// CreateExecution records a new run of a sequence in the pending
	// state and returns the execution ID.
	CreateExecution(ctx context.Context, sequenceID int64, at time.Time) (int64, error)

	// GetExecution retrieves an execution joined with its owning
	// sequence for device resolution. Returns ErrExecutionNotFound if
	// absent.
	GetExecution(ctx context.Context, id int64) (*Execution, error)

	// UpdateExecutionStatus transitions an execution to the given state.
	// Returns ErrExecutionNotFound if absent.
	UpdateExecutionStatus(ctx context.Context, id int64, status string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a sequence with its ordered operations.
func (r *SQLiteRepository) Create(ctx context.Context, deviceID int64, name string, moves []int) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx,
		`INSERT INTO secuencias (id_dispositivo, nombre_secuencia, fecha_creacion) VALUES (?, ?, ?)`,
		deviceID, name, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("inserting sequence: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading sequence insert id: %w", err)
	}

	if err := insertMoves(ctx, tx, id, moves); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing sequence: %w", err)
	}
	return id, nil
}

// GetByID retrieves a sequence with its operations in order.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Sequence, error) {
	query := `
		SELECT s.id_secuencia, s.id_dispositivo, s.nombre_secuencia,
			d.nombre_dispositivo, s.fecha_creacion
		FROM secuencias s
		JOIN dispositivos d ON d.id_dispositivo = s.id_dispositivo
		WHERE s.id_secuencia = ?`

	var seq Sequence
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&seq.ID, &seq.DeviceID, &seq.Name, &seq.DeviceName, &seq.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying sequence by id: %w", err)
	}

	seq.Moves, err = r.loadMoves(ctx, id)
	if err != nil {
		return nil, err
	}
	seq.TotalMoves = len(seq.Moves)
	return &seq, nil
}

// List retrieves sequences, newest first.
func (r *SQLiteRepository) List(ctx context.Context, deviceID int64) ([]Sequence, error) {
	query := `
		SELECT s.id_secuencia, s.id_dispositivo, s.nombre_secuencia,
			d.nombre_dispositivo, s.fecha_creacion
		FROM secuencias s
		JOIN dispositivos d ON d.id_dispositivo = s.id_dispositivo`

	args := []any{}
	if deviceID != 0 {
		query += " WHERE s.id_dispositivo = ?"
		args = append(args, deviceID)
	}
	query += " ORDER BY s.id_secuencia DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sequences: %w", err)
	}
	defer rows.Close()

	var sequences []Sequence
	for rows.Next() {
		var seq Sequence
		if err := rows.Scan(&seq.ID, &seq.DeviceID, &seq.Name,
			&seq.DeviceName, &seq.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning sequence: %w", err)
		}
		sequences = append(sequences, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sequences: %w", err)
	}

	for i := range sequences {
		sequences[i].Moves, err = r.loadMoves(ctx, sequences[i].ID)
		if err != nil {
			return nil, err
		}
		sequences[i].TotalMoves = len(sequences[i].Moves)
	}
	return sequences, nil
}

// Update replaces a sequence's name and operations atomically.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, name string, moves []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx,
		`UPDATE secuencias SET nombre_secuencia = ? WHERE id_secuencia = ?`, name, id)
	if err != nil {
		return fmt.Errorf("updating sequence: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM secuencia_operaciones WHERE id_secuencia = ?`, id); err != nil {
		return fmt.Errorf("clearing sequence operations: %w", err)
	}
	if err := insertMoves(ctx, tx, id, moves); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sequence update: %w", err)
	}
	return nil
}

// Delete removes a sequence with its operations and executions.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM ejecucion_secuencias WHERE id_secuencia = ?`, id); err != nil {
		return fmt.Errorf("deleting sequence executions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM secuencia_operaciones WHERE id_secuencia = ?`, id); err != nil {
		return fmt.Errorf("deleting sequence operations: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM secuencias WHERE id_secuencia = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting sequence: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sequence delete: %w", err)
	}
	return nil
}

// CreateExecution records a new pending run of a sequence.
func (r *SQLiteRepository) CreateExecution(ctx context.Context, sequenceID int64, at time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO ejecucion_secuencias (id_secuencia, estado, fecha_ejecucion) VALUES (?, ?, ?)`,
		sequenceID, StatusPending, at.UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("inserting execution: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading execution insert id: %w", err)
	}
	return id, nil
}

// GetExecution retrieves an execution with its device resolved through
// the owning sequence.
func (r *SQLiteRepository) GetExecution(ctx context.Context, id int64) (*Execution, error) {
	query := `
		SELECT e.id_ejecucion, e.id_secuencia, s.id_dispositivo, e.estado, e.fecha_ejecucion
		FROM ejecucion_secuencias e
		JOIN secuencias s ON s.id_secuencia = e.id_secuencia
		WHERE e.id_ejecucion = ?`

	var exec Execution
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&exec.ID, &exec.SequenceID, &exec.DeviceID, &exec.Status, &exec.ExecutedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExecutionNotFound
		}
		return nil, fmt.Errorf("querying execution by id: %w", err)
	}

	exec.Moves, err = r.loadMoves(ctx, exec.SequenceID)
	if err != nil {
		return nil, err
	}
	return &exec, nil
}

// UpdateExecutionStatus transitions an execution to the given state.
func (r *SQLiteRepository) UpdateExecutionStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE ejecucion_secuencias SET estado = ? WHERE id_ejecucion = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating execution status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrExecutionNotFound
	}
	return nil
}

// loadMoves returns a sequence's operation codes in execution order.
func (r *SQLiteRepository) loadMoves(ctx context.Context, sequenceID int64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status_operacion FROM secuencia_operaciones WHERE id_secuencia = ? ORDER BY orden`,
		sequenceID)
	if err != nil {
		return nil, fmt.Errorf("querying sequence operations: %w", err)
	}
	defer rows.Close()

	var moves []int
	for rows.Next() {
		var op int
		if err := rows.Scan(&op); err != nil {
			return nil, fmt.Errorf("scanning sequence operation: %w", err)
		}
		moves = append(moves, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sequence operations: %w", err)
	}
	return moves, nil
}

func insertMoves(ctx context.Context, tx *sql.Tx, sequenceID int64, moves []int) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO secuencia_operaciones (id_secuencia, orden, status_operacion) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing operation insert: %w", err)
	}
	defer stmt.Close()

	for i, op := range moves {
		if _, err := stmt.ExecContext(ctx, sequenceID, i+1, op); err != nil {
			return fmt.Errorf("inserting operation %d: %w", i+1, err)
		}
	}
	return nil
}
