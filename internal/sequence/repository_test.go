package sequence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE dispositivos (
			id_dispositivo INTEGER PRIMARY KEY AUTOINCREMENT,
			cliente TEXT,
			nombre_dispositivo TEXT NOT NULL,
			descripcion TEXT,
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT ''
		) STRICT;
		CREATE TABLE secuencias (
			id_secuencia INTEGER PRIMARY KEY AUTOINCREMENT,
			id_dispositivo INTEGER NOT NULL,
			nombre_secuencia TEXT NOT NULL,
			fecha_creacion TEXT NOT NULL
		) STRICT;
		CREATE TABLE secuencia_operaciones (
			id_secuencia_operacion INTEGER PRIMARY KEY AUTOINCREMENT,
			id_secuencia INTEGER NOT NULL,
			status_operacion INTEGER NOT NULL,
			orden INTEGER NOT NULL
		) STRICT;
		CREATE TABLE ejecucion_secuencias (
			id_ejecucion INTEGER PRIMARY KEY AUTOINCREMENT,
			id_secuencia INTEGER NOT NULL,
			fecha_ejecucion TEXT NOT NULL,
			estado TEXT NOT NULL DEFAULT 'pendiente'
		) STRICT;

		INSERT INTO dispositivos (id_dispositivo, nombre_dispositivo) VALUES (1, 'Rover 01');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}
	return db
}

func TestCreateAndGetSequence(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, 1, "patrulla", []int{1, 3, 1, 5})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	seq, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if seq.Name != "patrulla" {
		t.Errorf("unexpected name: %q", seq.Name)
	}
	if seq.DeviceName != "Rover 01" {
		t.Errorf("expected joined device name, got %q", seq.DeviceName)
	}
	if seq.TotalMoves != 4 {
		t.Errorf("expected 4 moves, got %d", seq.TotalMoves)
	}
	want := []int{1, 3, 1, 5}
	for i, op := range want {
		if seq.Moves[i] != op {
			t.Fatalf("moves out of order: got %v, want %v", seq.Moves, want)
		}
	}
}

func TestGetSequenceNotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	if _, err := repo.GetByID(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSequences(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, 1, "primera", []int{1}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := repo.Create(ctx, 1, "segunda", []int{2, 5}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sequences, err := repo.List(ctx, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sequences) != 2 {
		t.Fatalf("expected 2 sequences, got %d", len(sequences))
	}
	if sequences[0].Name != "segunda" {
		t.Errorf("expected newest-first ordering, got %q first", sequences[0].Name)
	}
	if sequences[0].TotalMoves != 2 {
		t.Errorf("expected moves loaded per sequence, got %+v", sequences[0])
	}
}

func TestUpdateSequenceReplacesMoves(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, 1, "patrulla", []int{1, 2, 3})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Update(ctx, id, "patrulla corta", []int{4, 5}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	seq, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if seq.Name != "patrulla corta" {
		t.Errorf("unexpected name after update: %q", seq.Name)
	}
	if seq.TotalMoves != 2 || seq.Moves[0] != 4 || seq.Moves[1] != 5 {
		t.Errorf("expected moves fully replaced, got %v", seq.Moves)
	}

	if err := repo.Update(ctx, 99, "x", []int{1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing sequence, got %v", err)
	}
}

func TestDeleteSequenceCascades(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, 1, "patrulla", []int{1, 5})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	execID, err := repo.CreateExecution(ctx, id, time.Now().UTC())
	if err != nil {
		t.Fatalf("CreateExecution failed: %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := repo.GetByID(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected sequence gone, got %v", err)
	}
	if _, err := repo.GetExecution(ctx, execID); !errors.Is(err, ErrExecutionNotFound) {
		t.Errorf("expected executions removed with the sequence, got %v", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestExecutionLifecycle(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	seqID, err := repo.Create(ctx, 1, "patrulla", []int{1, 2})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	execID, err := repo.CreateExecution(ctx, seqID, time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CreateExecution failed: %v", err)
	}

	exec, err := repo.GetExecution(ctx, execID)
	if err != nil {
		t.Fatalf("GetExecution failed: %v", err)
	}
	if exec.Status != StatusPending {
		t.Errorf("expected pending status, got %q", exec.Status)
	}
	// The device is resolved through the owning sequence.
	if exec.DeviceID != 1 {
		t.Errorf("expected device resolved via sequence join, got %d", exec.DeviceID)
	}
	if len(exec.Moves) != 2 {
		t.Errorf("expected sequence moves on the execution, got %v", exec.Moves)
	}
	if exec.ExecutedAt != "2026-03-15 10:30:00" {
		t.Errorf("unexpected execution timestamp: %q", exec.ExecutedAt)
	}

	if err := repo.UpdateExecutionStatus(ctx, execID, StatusCompleted); err != nil {
		t.Fatalf("UpdateExecutionStatus failed: %v", err)
	}
	exec, err = repo.GetExecution(ctx, execID)
	if err != nil {
		t.Fatalf("GetExecution after update failed: %v", err)
	}
	if exec.Status != StatusCompleted {
		t.Errorf("expected completed status, got %q", exec.Status)
	}

	if err := repo.UpdateExecutionStatus(ctx, 99, StatusFailed); !errors.Is(err, ErrExecutionNotFound) {
		t.Errorf("expected ErrExecutionNotFound, got %v", err)
	}
}
