package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gestaozabele/fireguard/internal/auth"
	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/persist"
	"github.com/gestaozabele/fireguard/internal/util"
)

var (
	ErrUsernameTaken = errors.New("usuário já existe")
	ErrSelfDelete    = errors.New("não é possível remover o próprio usuário")
	ErrLastAdmin     = errors.New("é necessário manter ao menos um administrador")
)

// UserService administra os usuários do aplicativo.
type UserService struct {
	store        *persist.Handle
	hashPassword bool
}

// NewUserService cria o serviço. Com hashPassword as novas senhas são gravadas em Argon2id.
func NewUserService(store *persist.Handle, hashPassword bool) *UserService {
	return &UserService{store: store, hashPassword: hashPassword}
}

// CreateUserInput agrupa os campos do formulário de usuário.
type CreateUserInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List devolve os usuários sem senha.
func (s *UserService) List(ctx context.Context) []fleet.User {
	users := s.store.Facade().GetUsers(ctx)
	out := make([]fleet.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (fleet.User, error) {
	name := strings.TrimSpace(input.Name)
	username := strings.TrimSpace(input.Username)
	role := fleet.NormalizeRole(input.Role)
	if role == "" {
		role = fleet.RoleBrigadista
	}

	if err := util.RequireString(name, "nome"); err != nil {
		return fleet.User{}, err
	}
	if err := util.ValidateUsername(username); err != nil {
		return fleet.User{}, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return fleet.User{}, err
	}
	if !fleet.IsValidRole(role) {
		return fleet.User{}, util.Invalid("role", fleet.ErrInvalidRole.Error())
	}

	facade := s.store.Facade()
	if _, err := facade.FindUserByUsername(ctx, username); err == nil {
		return fleet.User{}, ErrUsernameTaken
	}

	password := input.Password
	if s.hashPassword {
		hashed, err := auth.Hash(password)
		if err != nil {
			return fleet.User{}, fmt.Errorf("gerar hash: %w", err)
		}
		password = hashed
	}

	user := fleet.StoredUser{
		User:     fleet.User{ID: fleet.NewID(), Name: name, Username: username, Role: role},
		Password: password,
	}
	if err := facade.SaveUser(ctx, user); err != nil {
		return fleet.User{}, err
	}
	return user.Public(), nil
}

// Delete remove o usuário; o próprio usuário e o último administrador não podem ser removidos.
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return ErrSelfDelete
	}

	facade := s.store.Facade()
	users := facade.GetUsers(ctx)

	var target *fleet.StoredUser
	admins := 0
	for i := range users {
		if users[i].Role == fleet.RoleAdmin {
			admins++
		}
		if users[i].ID == id {
			target = &users[i]
		}
	}
	if target == nil {
		return fleet.ErrNotFound
	}
	if target.Role == fleet.RoleAdmin && admins <= 1 {
		return ErrLastAdmin
	}

	return facade.DeleteUser(ctx, id)
}
