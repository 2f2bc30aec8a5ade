package student

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/ferjoo/tutorias/core"
)

type Student struct {
	ID           int       `json:"student_id"`
	Carnet       string    `json:"carnet"`
	PasswordHash []byte    `json:"-"`
	Name         string    `json:"nombre"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (s *Student) SetPassword(pwd string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Carnet   string `json:"carnet" validate:"required,alphanum_"`
	Password string `json:"password" validate:"required,min=4"`
	Name     string `json:"nombre" validate:"required,notblank"`
}

func (ns *NewStudent) Validate() error {
	ns.Carnet = core.CleanString(ns.Carnet)
	ns.Name = core.CleanString(ns.Name)
	return core.ValidateStruct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Carnet   null.String `json:"carnet" validate:"omitempty,alphanum_"`
	Password null.String `json:"password" validate:"omitempty,min=4"`
	Name     null.String `json:"nombre" validate:"omitempty,notblank"`
	IsActive null.Bool   `json:"is_active"`
}

func (us *UpdateStudent) Validate() error {
	if us.Carnet.Valid {
		us.Carnet.String = core.CleanString(us.Carnet.String)
		us.Carnet.Valid = us.Carnet.String != ""
	}
	if us.Name.Valid {
		us.Name.String = core.CleanString(us.Name.String)
		us.Name.Valid = us.Name.String != ""
	}
	return core.ValidateStruct(us)
}

func (us UpdateStudent) apply(s *Student) {
	if us.Carnet.Valid {
		s.Carnet = us.Carnet.String
	}
	if us.Name.Valid {
		s.Name = us.Name.String
	}
	if us.IsActive.Valid {
		s.IsActive = us.IsActive.Bool
	}
}
