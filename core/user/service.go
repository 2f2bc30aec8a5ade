package user

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
)

type (
	Repository interface {
		CreateUser(usr User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id int) (User, error)
		GetUserByUsername(username string) (User, error)
		GetUserByEmail(email string) (User, error)
		FilterUsers(filter QueryFilter) ([]User, error)
		UpdateUser(usr User) (User, error)
		DeleteUser(id int) (bool, error)
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

func (svc *Service) Create(nu NewUser) (User, error) {
	if err := nu.Validate(); err != nil {
		return User{}, err
	}
	now := time.Now().UTC()
	usr := User{
		Username:  nu.Username,
		Email:     nu.Email,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		IsActive:  true,
		IsAdmin:   nu.IsAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password, svc.pwdCost); err != nil {
		return User{}, errors.Wrap(err, "user: hashing password")
	}
	return svc.repo.CreateUser(usr)
}

// BulkCreate creates users one by one; it stops at the first failure without undoing what was created.
func (svc *Service) BulkCreate(nus []NewUser) ([]User, error) {
	created := make([]User, 0, len(nus))
	for i, nu := range nus {
		usr, err := svc.Create(nu)
		if err != nil {
			return created, errors.Wrapf(err, "user #%d", i+1)
		}
		created = append(created, usr)
	}
	return created, nil
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByUsername(uname string) (User, error) {
	return svc.repo.GetUserByUsername(core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(uname string) (User, error) {
	usr, err := svc.GetByUsername(uname)
	if errors.Is(err, core.ErrNotFound) {
		return svc.GetByEmail(uname)
	}
	return usr, err
}

func (svc *Service) Filter(filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.FilterUsers(filter)
}

func (svc *Service) Update(id int, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	if err := uu.Validate(usr); err != nil {
		return User{}, err
	}
	uu.apply(&usr)
	if uu.Password.Valid {
		if err := usr.SetPassword(uu.Password.String, svc.pwdCost); err != nil {
			return User{}, errors.Wrap(err, "user: hashing password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

// Delete reports false when the user did not exist.
func (svc *Service) Delete(id int) (bool, error) {
	return svc.repo.DeleteUser(id)
}

// Authenticate returns the active user identified by username or email whose password matches pwd.
func (svc *Service) Authenticate(uname, pwd string) (User, error) {
	usr, err := svc.GetByUsernameOrEmail(uname)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return User{}, core.ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.IsActive || usr.CheckPassword(pwd) != nil {
		return User{}, core.ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) Stats() core.StoreStats {
	return svc.repo.Stats()
}
