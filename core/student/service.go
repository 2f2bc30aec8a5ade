package student

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
)

type (
	Repository interface {
		CreateStudent(s Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id int) (Student, error)
		GetStudentByCarnet(carnet string) (Student, error)
		UpdateStudent(s Student) (Student, error)
		DeleteStudent(id int) (bool, error)
		Stats() core.StoreStats
	}

	Service struct {
		repo    Repository
		pwdCost int
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, pwdCost: conf.BcryptCost}
}

func (svc *Service) Create(ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	now := time.Now().UTC()
	s := Student{
		Carnet:    ns.Carnet,
		Name:      ns.Name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.SetPassword(ns.Password, svc.pwdCost); err != nil {
		return Student{}, errors.Wrap(err, "student: hashing password")
	}
	return svc.repo.CreateStudent(s)
}

// BulkCreate creates students one by one; it stops at the first failure without undoing what was created.
func (svc *Service) BulkCreate(nss []NewStudent) ([]Student, error) {
	created := make([]Student, 0, len(nss))
	for i, ns := range nss {
		s, err := svc.Create(ns)
		if err != nil {
			return created, errors.Wrapf(err, "student #%d", i+1)
		}
		created = append(created, s)
	}
	return created, nil
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) GetByID(id int) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *Service) GetByCarnet(carnet string) (Student, error) {
	return svc.repo.GetStudentByCarnet(core.CleanString(carnet))
}

func (svc *Service) Update(id int, us UpdateStudent) (Student, error) {
	s, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}
	if err := us.Validate(); err != nil {
		return Student{}, err
	}
	us.apply(&s)
	if us.Password.Valid {
		if err := s.SetPassword(us.Password.String, svc.pwdCost); err != nil {
			return Student{}, errors.Wrap(err, "student: hashing password")
		}
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(s)
}

func (svc *Service) Delete(id int) (bool, error) {
	return svc.repo.DeleteStudent(id)
}

// Authenticate returns the active student holding carnet whose password matches pwd.
func (svc *Service) Authenticate(carnet, pwd string) (Student, error) {
	s, err := svc.GetByCarnet(carnet)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Student{}, core.ErrInvalidCredentials
		}
		return Student{}, err
	}
	if !s.IsActive || s.CheckPassword(pwd) != nil {
		return Student{}, core.ErrInvalidCredentials
	}
	return s, nil
}

func (svc *Service) Stats() core.StoreStats {
	return svc.repo.Stats()
}
