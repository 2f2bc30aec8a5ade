package course

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ferjoo/tutorias/core"
)

type Course struct {
	ID        int       `json:"course_id"`
	Code      string    `json:"codigo"`
	Name      string    `json:"nombre"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Code string `json:"codigo" validate:"required,alphanum_"`
	Name string `json:"nombre" validate:"required,notblank"`
}

func (nc *NewCourse) Validate() error {
	nc.Code = CleanCode(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	return core.ValidateStruct(nc)
}

type UpdateCourse struct {
	Code     null.String `json:"codigo" validate:"omitempty,alphanum_"`
	Name     null.String `json:"nombre" validate:"omitempty,notblank"`
	IsActive null.Bool   `json:"is_active"`
}

func (uc *UpdateCourse) Validate() error {
	if uc.Code.Valid {
		uc.Code.String = CleanCode(uc.Code.String)
		uc.Code.Valid = uc.Code.String != ""
	}
	if uc.Name.Valid {
		uc.Name.String = core.CleanString(uc.Name.String)
		uc.Name.Valid = uc.Name.String != ""
	}
	return core.ValidateStruct(uc)
}

func (uc UpdateCourse) apply(c *Course) {
	if uc.Code.Valid {
		c.Code = uc.Code.String
	}
	if uc.Name.Valid {
		c.Name = uc.Name.String
	}
	if uc.IsActive.Valid {
		c.IsActive = uc.IsActive.Bool
	}
}

// CleanCode normalizes a course code (codes are case-insensitive).
func CleanCode(code string) string {
	return strings.ToUpper(core.CleanString(code))
}
