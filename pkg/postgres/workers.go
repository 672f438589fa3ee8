package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/db"
)

const workerColumns = `id, provider_id, name, phone, email, team_id, skills, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (db.WorkerProfile, error) {
	var w db.WorkerProfile
	var phone, email, teamID *string
	var status string
	if err := row.Scan(&w.ID, &w.ProviderID, &w.Name, &phone, &email, &teamID, &w.Skills, &status, &w.CreatedAt); err != nil {
		return w, err
	}
	w.Phone = deref(phone)
	w.Email = deref(email)
	w.TeamID = deref(teamID)
	w.Status = model.WorkerStatus(status)
	return w, nil
}

// GetWorkerProfiles retrieves a provider's worker profiles
func (d *DB) GetWorkerProfiles(ctx context.Context, providerID string) ([]db.WorkerProfile, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+workerColumns+`
		FROM worker_profiles
		WHERE provider_id = $1
		ORDER BY name, id
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query worker profiles: %w", err)
	}
	defer rows.Close()

	var workers []db.WorkerProfile
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker profile: %w", err)
		}
		workers = append(workers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating worker profiles: %w", err)
	}

	return workers, nil
}

// GetWorkerProfile retrieves one worker profile by id
func (d *DB) GetWorkerProfile(ctx context.Context, workerProfileID string) (*db.WorkerProfile, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+workerColumns+` FROM worker_profiles WHERE id = $1`, workerProfileID)
	w, err := scanWorker(row)
	if isNoRows(err) {
		return nil, fmt.Errorf("worker profile %s: %w", workerProfileID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker profile: %w", err)
	}
	return &w, nil
}

// GetTeams retrieves a provider's worker teams
func (d *DB) GetTeams(ctx context.Context, providerID string) ([]db.Team, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, provider_id, name FROM teams WHERE provider_id = $1 ORDER BY name
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []db.Team
	for rows.Next() {
		var t db.Team
		if err := rows.Scan(&t.ID, &t.ProviderID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// InsertWorkerProfile inserts a new worker profile
func (d *DB) InsertWorkerProfile(ctx context.Context, worker *db.WorkerProfile) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO worker_profiles (id, provider_id, name, phone, email, team_id, skills, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, worker.ID, worker.ProviderID, worker.Name, nullable(worker.Phone), nullable(worker.Email),
		nullable(worker.TeamID), skillsOrEmpty(worker.Skills), string(worker.Status), worker.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert worker profile: %w", err)
	}
	return nil
}

// UpdateWorkerProfile replaces a worker's editable fields
func (d *DB) UpdateWorkerProfile(ctx context.Context, worker *db.WorkerProfile) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE worker_profiles
		SET name = $3, phone = $4, email = $5, team_id = $6, skills = $7, status = $8
		WHERE provider_id = $1 AND id = $2
	`, worker.ProviderID, worker.ID, worker.Name, nullable(worker.Phone), nullable(worker.Email),
		nullable(worker.TeamID), skillsOrEmpty(worker.Skills), string(worker.Status))
	if err != nil {
		return fmt.Errorf("failed to update worker profile: %w", err)
	}
	return requireAffected(tag, "worker profile", worker.ID)
}

// DeleteWorkerProfile removes a worker; its shifts become unassigned via ON DELETE SET NULL
func (d *DB) DeleteWorkerProfile(ctx context.Context, providerID, workerID string) error {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM worker_profiles WHERE provider_id = $1 AND id = $2
	`, providerID, workerID)
	if err != nil {
		return fmt.Errorf("failed to delete worker profile: %w", err)
	}
	return requireAffected(tag, "worker profile", workerID)
}

// UpdateWorkerTeam sets or clears a worker's team
func (d *DB) UpdateWorkerTeam(ctx context.Context, providerID, workerID, teamID string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE worker_profiles SET team_id = $3
		WHERE provider_id = $1 AND id = $2
	`, providerID, workerID, nullable(teamID))
	if err != nil {
		return fmt.Errorf("failed to update worker team: %w", err)
	}
	return requireAffected(tag, "worker profile", workerID)
}

func skillsOrEmpty(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}
