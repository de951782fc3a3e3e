package repository

import (
	"context"
	"database/sql"

	"github.com/pushparajlokesh/ml-cts-pro/internal/entity"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `INSERT INTO users (username, email, password) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.Password)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	user.ID = int(id)
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, username, email, password FROM users WHERE email = ?`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Username, &user.Email, &user.Password)
	if err != nil {
		return nil, err
	}

	return user, nil
}

type PredictionRunRepository struct {
	db *sql.DB
}

func NewPredictionRunRepository(db *sql.DB) *PredictionRunRepository {
	return &PredictionRunRepository{db}
}

func (r *PredictionRunRepository) RecordRun(ctx context.Context, run *entity.PredictionRun) (*entity.PredictionRun, error) {
	query := `INSERT INTO prediction_runs (user_id, filename, row_count) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, run.UserID, run.Filename, run.RowCount)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	run.ID = int(id)
	return run, nil
}

func (r *PredictionRunRepository) ListRunsByUser(ctx context.Context, userID int) ([]entity.PredictionRun, error) {
	query := `SELECT id, user_id, filename, row_count, created_at FROM prediction_runs WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []entity.PredictionRun
	for rows.Next() {
		var run entity.PredictionRun
		if err := rows.Scan(&run.ID, &run.UserID, &run.Filename, &run.RowCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
