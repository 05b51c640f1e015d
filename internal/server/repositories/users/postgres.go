package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/dbx"
	"github.com/dmitrijs2005/devfeed/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectColumns = `id, email, password_hash, email_verified, COALESCE(verification_token, ''), attributes, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	attrs, err := encodeAttributes(user.Attributes)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO users (email, password_hash, attributes)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, attrs).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + selectColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + selectColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) SetVerificationToken(ctx context.Context, id, token string) error {
	query := `UPDATE users SET verification_token = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// UpdateAttributes merges attrs into the stored attribute map and returns
// the updated user.
func (r *PostgresRepository) UpdateAttributes(ctx context.Context, id string, attrs map[string]string) (*models.User, error) {
	patch, err := encodeAttributes(attrs)
	if err != nil {
		return nil, err
	}

	query := `UPDATE users SET attributes = attributes || $2::jsonb WHERE id = $1
		 RETURNING ` + selectColumns
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, patch))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var attrs []byte

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.EmailVerified,
		&user.VerificationToken, &attrs, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &user.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	return user, nil
}

func encodeAttributes(attrs map[string]string) ([]byte, error) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	return b, nil
}
