package course

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
)

type (
	Repository interface {
		CreateCourse(c Course) (Course, error)
		QueryAllCourses() ([]Course, error)
		GetCourseByID(id int) (Course, error)
		GetCourseByCode(code string) (Course, error)
		UpdateCourse(c Course) (Course, error)
		DeleteCourse(id int) (bool, error)
		Stats() core.StoreStats
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(nc NewCourse) (Course, error) {
	if err := nc.Validate(); err != nil {
		return Course{}, err
	}
	return svc.repo.CreateCourse(Course{
		Code:      nc.Code,
		Name:      nc.Name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	})
}

// BulkCreate creates courses one by one; it stops at the first failure without undoing what was created.
func (svc *Service) BulkCreate(ncs []NewCourse) ([]Course, error) {
	created := make([]Course, 0, len(ncs))
	for i, nc := range ncs {
		c, err := svc.Create(nc)
		if err != nil {
			return created, errors.Wrapf(err, "course #%d", i+1)
		}
		created = append(created, c)
	}
	return created, nil
}

func (svc *Service) QueryAll() ([]Course, error) {
	return svc.repo.QueryAllCourses()
}

func (svc *Service) GetByID(id int) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *Service) GetByCode(code string) (Course, error) {
	return svc.repo.GetCourseByCode(CleanCode(code))
}

// Exists reports whether a live course holds code.
func (svc *Service) Exists(code string) (bool, error) {
	_, err := svc.GetByCode(code)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, core.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (svc *Service) Update(id int, uc UpdateCourse) (Course, error) {
	c, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return Course{}, err
	}
	if err := uc.Validate(); err != nil {
		return Course{}, err
	}
	uc.apply(&c)
	return svc.repo.UpdateCourse(c)
}

// Delete tombstones the course only; schedules and assignments referencing its code are left as they are.
func (svc *Service) Delete(id int) (bool, error) {
	return svc.repo.DeleteCourse(id)
}

func (svc *Service) Stats() core.StoreStats {
	return svc.repo.Stats()
}
