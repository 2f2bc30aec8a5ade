package user

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/ferjoo/tutorias/core"
)

type User struct {
	ID           int       `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username  string `json:"username" validate:"required,min=3,alphanum_"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`

	// Imported users come from a configuration file; their password only needs the minimum length.
	Imported bool `json:"-"`
}

func (nu *NewUser) Validate() error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	return core.ValidateStruct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Unset fields keep their current value.
type UpdateUser struct {
	Username  null.String `json:"username" validate:"omitempty,min=3,alphanum_"`
	Email     null.String `json:"email" validate:"omitempty,email"`
	Password  null.String `json:"password"`
	FirstName null.String `json:"first_name"`
	LastName  null.String `json:"last_name"`
	IsActive  null.Bool   `json:"is_active"`
	IsAdmin   null.Bool   `json:"is_admin"`

	orig User
}

func (uu *UpdateUser) Validate(origUsr User) error {
	uu.orig = origUsr
	cleanPatch(&uu.Username, true)
	cleanPatch(&uu.Email, true)
	if uu.FirstName.Valid {
		uu.FirstName.String = core.CleanString(uu.FirstName.String)
	}
	if uu.LastName.Valid {
		uu.LastName.String = core.CleanString(uu.LastName.String)
	}
	return core.ValidateStruct(uu)
}

// apply merges the set fields into usr.
func (uu UpdateUser) apply(usr *User) {
	if uu.Username.Valid {
		usr.Username = uu.Username.String
	}
	if uu.Email.Valid {
		usr.Email = uu.Email.String
	}
	if uu.FirstName.Valid {
		usr.FirstName = uu.FirstName.String
	}
	if uu.LastName.Valid {
		usr.LastName = uu.LastName.String
	}
	if uu.IsActive.Valid {
		usr.IsActive = uu.IsActive.Bool
	}
	if uu.IsAdmin.Valid {
		usr.IsAdmin = uu.IsAdmin.Bool
	}
}

// cleanPatch trims a patch value; a blank value counts as not provided.
func cleanPatch(s *null.String, lower bool) {
	if !s.Valid {
		return
	}
	s.String = core.CleanString(s.String, lower)
	if s.String == "" {
		s.Valid = false
	}
}

type QueryFilter struct {
	Search   string    `query:"search"`
	IsActive null.Bool `query:"is_active"`
	IsAdmin  null.Bool `query:"is_admin"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}

// Match applies AND on the set filter fields.
// Search is a case-insensitive match on one of Username, Email or the full name.
func (qf QueryFilter) Match(u User) bool {
	if qf.IsActive.Valid && u.IsActive != qf.IsActive.Bool {
		return false
	}
	if qf.IsAdmin.Valid && u.IsAdmin != qf.IsAdmin.Bool {
		return false
	}
	if qf.Search != "" {
		return strings.Contains(u.Username, qf.Search) ||
			strings.Contains(u.Email, qf.Search) ||
			strings.Contains(strings.ToLower(u.FullName()), qf.Search)
	}
	return true
}
