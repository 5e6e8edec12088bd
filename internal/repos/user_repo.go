package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id,email,full_name,password_hash,role,is_active`

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := r.DB.SelectContext(ctx, &out, `SELECT `+userCols+` FROM users ORDER BY full_name, id`)
	return out, err
}

func (r *UserRepo) Insert(ctx context.Context, u *domain.User) error {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO users(email,full_name,password_hash,role,is_active) VALUES(?,?,?,?,?)`,
		u.Email, u.FullName, u.Hash, u.Role, u.IsActive)
	if err != nil {
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *UserRepo) Update(ctx context.Context, u domain.User) error {
	return guarded(r.DB.ExecContext(ctx, `UPDATE users SET email=?,full_name=?,role=? WHERE id=?`,
		u.Email, u.FullName, u.Role, u.ID))
}

func (r *UserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return guarded(r.DB.ExecContext(ctx, `UPDATE users SET is_active=? WHERE id=?`, active, id))
}

func (r *UserRepo) SetPassword(ctx context.Context, id int64, hash string) error {
	return guarded(r.DB.ExecContext(ctx, `UPDATE users SET password_hash=? WHERE id=?`, hash, id))
}

func (r *UserRepo) BindSession(ctx context.Context, sid string, userID int64) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

// SessionUser resolves the active user bound to sid.
func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `
      SELECT u.id,u.email,u.full_name,u.password_hash,u.role,u.is_active
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=? AND u.is_active=1`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// DropSessions signs a user out everywhere.
func (r *UserRepo) DropSessions(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id=?`, userID)
	return err
}
