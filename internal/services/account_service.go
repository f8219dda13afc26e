package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/L33hy/cse340/internal/models"
)

// ErrAccountNotFound is returned when a lookup matches no account.
var ErrAccountNotFound = errors.New("account not found")

// AccountServiceProvider defines the credential-store interface.
type AccountServiceProvider interface {
	Register(firstName, lastName, email, passwordHash string) (int64, error)
	GetAccountByEmail(email string) (models.Account, error)
	GetAccountByID(id int) (models.Account, error)
	UpdateAccount(id int, firstName, lastName, email string) (bool, error)
	UpdatePassword(id int, passwordHash string) (bool, error)
}

// AccountService persists account records. All operations are atomic
// single-row reads and writes; concurrent updates to the same account are
// last-write-wins.
type AccountService struct {
	db *sql.DB
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{db: db}
}

// Register inserts a new account record and returns the number of affected
// rows. A duplicate email reports zero rows rather than an error: it is a
// condition reachable by normal user input. Only unrecoverable storage errors
// are returned.
func (s *AccountService) Register(firstName, lastName, email, passwordHash string) (int64, error) {
	stmt, err := s.db.Prepare(`INSERT INTO account
		(account_firstname, account_lastname, account_email, account_password, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	res, err := stmt.Exec(firstName, lastName, email, passwordHash, now())
	if err != nil {
		if isConstraintViolation(err) {
			return 0, nil
		}
		return 0, err
	}
	return res.RowsAffected()
}

// GetAccountByEmail retrieves a single account by email, including the
// password hash for credential verification.
func (s *AccountService) GetAccountByEmail(email string) (models.Account, error) {
	row := s.db.QueryRow(`SELECT account_id, account_firstname, account_lastname,
		account_email, account_password, account_type, created_at
		FROM account WHERE account_email = ?`, email)
	return scanAccount(row)
}

// GetAccountByID retrieves a single account by its ID, including the password
// hash.
func (s *AccountService) GetAccountByID(id int) (models.Account, error) {
	row := s.db.QueryRow(`SELECT account_id, account_firstname, account_lastname,
		account_email, account_password, account_type, created_at
		FROM account WHERE account_id = ?`, id)
	return scanAccount(row)
}

// UpdateAccount updates an account's profile fields. It reports whether a row
// was changed.
func (s *AccountService) UpdateAccount(id int, firstName, lastName, email string) (bool, error) {
	res, err := s.db.Exec(`UPDATE account
		SET account_firstname = ?, account_lastname = ?, account_email = ?
		WHERE account_id = ?`, firstName, lastName, email, id)
	if err != nil {
		if isConstraintViolation(err) {
			// The new email already belongs to another account.
			return false, nil
		}
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

// UpdatePassword replaces an account's password hash. It reports whether a
// row was changed; from that point on only the new password verifies.
func (s *AccountService) UpdatePassword(id int, passwordHash string) (bool, error) {
	res, err := s.db.Exec(`UPDATE account SET account_password = ? WHERE account_id = ?`,
		passwordHash, id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func scanAccount(row *sql.Row) (models.Account, error) {
	var account models.Account
	var createdAt string
	err := row.Scan(&account.ID, &account.FirstName, &account.LastName,
		&account.Email, &account.PasswordHash, &account.AccountType, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, err
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		account.CreatedAt = t
	}
	return account, nil
}

// now formats the current time the way the schema stores timestamps.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func isConstraintViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
