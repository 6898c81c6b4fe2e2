package database

import (
	"database/sql"
	"time"

	"github.com/R4Flutter/RentDone/app/models"
)

const userColumns = `id, email, email_lowercase, password, name, phone, role, tenant_id,
	photo_url, gravatar_url, previous_email, email_conflict_resolved_at, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.EmailLowercase, &u.Password, &u.Name, &u.Phone,
		&u.Role, &u.TenantID, &u.PhotoURL, &u.GravatarURL,
		&u.PreviousEmail, &u.EmailConflictResolvedAt,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func GetUserByID(db *sql.DB, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = true`
	return scanUser(db.QueryRow(query, userID))
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email_lowercase = lower($1) AND is_active = true`
	return scanUser(db.QueryRow(query, email))
}

func CreateUser(db *sql.DB, u *models.User) error {
	return db.QueryRow(`
		INSERT INTO users (email, email_lowercase, password, name, phone, role, created_at, updated_at)
		VALUES ($1, lower($1), $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`, u.Email, u.Password, u.Name, u.Phone, u.Role).Scan(&u.ID)
}

// EnsureUserRecord creates or refreshes the user row for an authenticated
// account, leaving an existing role untouched.
func EnsureUserRecord(db *sql.DB, userID, email, emailLowercase string, role models.UserRole) error {
	_, err := db.Exec(`
		INSERT INTO users (id, email, email_lowercase, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			email_lowercase = EXCLUDED.email_lowercase,
			updated_at = NOW()
	`, userID, email, emailLowercase, role)
	return err
}

// DuplicateEmailGroup is one shared email with every account using it,
// oldest first.
type DuplicateEmailGroup struct {
	Email string         `json:"email"`
	Users []*models.User `json:"users"`
}

// FindDuplicateEmails reports every lowercase email shared by more than one
// account.
func FindDuplicateEmails(db *sql.DB) ([]DuplicateEmailGroup, error) {
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE email_lowercase <> '' AND email_lowercase IN (
				  SELECT email_lowercase FROM users
				  WHERE email_lowercase <> ''
				  GROUP BY email_lowercase HAVING COUNT(*) > 1
			  )
			  ORDER BY email_lowercase, created_at ASC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []DuplicateEmailGroup
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].Email != u.EmailLowercase {
			groups = append(groups, DuplicateEmailGroup{Email: u.EmailLowercase})
		}
		groups[len(groups)-1].Users = append(groups[len(groups)-1].Users, u)
	}
	return groups, rows.Err()
}

// ListUsersByEmailLowercase returns every account sharing an email, oldest
// first.
func ListUsersByEmailLowercase(db *sql.DB, emailLowercase string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email_lowercase = $1 ORDER BY created_at ASC`
	rows, err := db.Query(query, emailLowercase)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ClearUserEmail removes a duplicate email from an account, keeping the old
// value in previous_email for auditability.
func ClearUserEmail(db *sql.DB, userID string) error {
	_, err := db.Exec(`
		UPDATE users
		SET previous_email = NULLIF(email, ''), email = '', email_lowercase = '',
			email_conflict_resolved_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, userID)
	return err
}

// SetUserGravatar stores the derived avatar URL and fills photo_url if the
// user never uploaded one.
func SetUserGravatar(db *sql.DB, userID, gravatarURL string) error {
	_, err := db.Exec(`
		UPDATE users
		SET gravatar_url = $2,
			photo_url = CASE WHEN photo_url = '' THEN $2 ELSE photo_url END,
			updated_at = NOW()
		WHERE id = $1
	`, userID, gravatarURL)
	return err
}

// ListUsersMissingGravatar returns users with an email but no avatar URL yet.
func ListUsersMissingGravatar(db *sql.DB) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email <> '' AND gravatar_url = ''`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// TouchUser bumps updated_at, used after avatar refreshes.
func TouchUser(db *sql.DB, userID string, at time.Time) error {
	_, err := db.Exec(`UPDATE users SET updated_at = $2 WHERE id = $1`, userID, at)
	return err
}
