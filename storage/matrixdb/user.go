package matrixdb

import (
	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/sparse"
	"github.com/ferjoo/tutorias/core/user"
)

const (
	userUsername = iota
	userEmail
	userPasswordHash
	userFirstName
	userLastName
	userIsActive
	userIsAdmin
	userCreatedAt
	userUpdatedAt
	userID
)

var userSchema = Schema[user.User]{
	Kind: "user",
	Columns: []string{
		"username", "email", "password_hash", "first_name", "last_name",
		"is_active", "is_admin", "created_at", "updated_at", "user_id",
	},
	Encode: func(u user.User) []sparse.Value {
		return []sparse.Value{
			userUsername:     sparse.Text(u.Username),
			userEmail:        sparse.Text(u.Email),
			userPasswordHash: sparse.Text(string(u.PasswordHash)),
			userFirstName:    sparse.Text(u.FirstName),
			userLastName:     sparse.Text(u.LastName),
			userIsActive:     sparse.Bool(u.IsActive),
			userIsAdmin:      sparse.Bool(u.IsAdmin),
			userCreatedAt:    sparse.Timestamp(u.CreatedAt),
			userUpdatedAt:    sparse.Timestamp(u.UpdatedAt),
			userID:           sparse.Int(int64(u.ID)),
		}
	},
	Decode: func(row []sparse.Value) user.User {
		return user.User{
			ID:           int(row[userID].AsInt()),
			Username:     row[userUsername].AsText(),
			Email:        row[userEmail].AsText(),
			PasswordHash: bytesOrNil(row[userPasswordHash].AsText()),
			FirstName:    row[userFirstName].AsText(),
			LastName:     row[userLastName].AsText(),
			IsActive:     row[userIsActive].AsBool(),
			IsAdmin:      row[userIsAdmin].AsBool(),
			CreatedAt:    row[userCreatedAt].AsTime(),
			UpdatedAt:    row[userUpdatedAt].AsTime(),
		}
	},
	SetID: func(u *user.User, id int) { u.ID = id },
	Indexes: []Index[user.User]{
		{Name: "username", Unique: true, Key: func(u user.User) string { return u.Username }},
		{Name: "email", Unique: true, Key: func(u user.User) string { return u.Email }},
	},
}

type userRepository struct {
	tbl *Table[user.User]
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{tbl: db.users}
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	return repo.tbl.Insert(usr)
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	return repo.tbl.All(), nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	return repo.tbl.Get(id)
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	return repo.tbl.GetBy("username", username)
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.tbl.GetBy("email", email)
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	return repo.tbl.Filter(filter.Match), nil
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	return repo.tbl.Replace(usr.ID, usr)
}

func (repo *userRepository) DeleteUser(id int) (bool, error) {
	return repo.tbl.Delete(id)
}

func (repo *userRepository) Stats() core.StoreStats {
	return repo.tbl.Stats().StoreStats
}

func bytesOrNil(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}
