package repos

import (
	"github.com/jmoiron/sqlx"

	"hamsterworld/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, login, email, password_hash, role`

func (r *UserRepo) ByLogin(login string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(login)=LOWER(?)`, login)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List() ([]domain.User, error) {
	var out []domain.User
	err := r.DB.Select(&out, `SELECT `+userCols+` FROM users ORDER BY login`)
	return out, err
}

func (r *UserRepo) CountByRole(role string) (int, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users WHERE role=?`, role)
	return n, err
}

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
      SELECT u.id,u.login,u.email,u.password_hash,u.role
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// SetRole updates a user's role and records the change so that sessions
// issued under the old role stop being honored until the next login.
func (r *UserRepo) SetRole(userID, role string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE users SET role=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, role, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.Exec(`
		INSERT INTO role_changes(user_id) VALUES(?)
		ON CONFLICT(user_id) DO UPDATE SET changed_at=CURRENT_TIMESTAMP
	`, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// RoleChanged reports whether the user's role changed since their sessions
// were issued.
func (r *UserRepo) RoleChanged(userID string) (bool, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM role_changes WHERE user_id=?`, userID)
	return n > 0, err
}

// ClearRoleChange removes the stale-session marker after a fresh login.
func (r *UserRepo) ClearRoleChange(userID string) error {
	_, err := r.DB.Exec(`DELETE FROM role_changes WHERE user_id=?`, userID)
	return err
}
