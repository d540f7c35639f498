package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/fireguard/internal/auth"
	"github.com/gestaozabele/fireguard/internal/fleet"
	"github.com/gestaozabele/fireguard/internal/persist"
)

var (
	// ErrInvalidCredentials indica falha na autenticação, sem dizer qual campo errou.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
)

// AuthService confere credenciais contra os usuários da fachada.
type AuthService struct {
	store *persist.Handle
	jwt   *auth.JWTManager
}

// NewAuthService cria novo serviço.
func NewAuthService(store *persist.Handle, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{store: store, jwt: jwtMgr}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken string     `json:"accessToken"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	User        fleet.User `json:"user"`
}

// Authenticate devolve o usuário reduzido quando usuário e senha conferem.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (fleet.User, error) {
	user, err := s.store.Facade().FindUserByUsername(ctx, username)
	if err != nil {
		log.Warn().Msg("login: usuário não encontrado")
		return fleet.User{}, ErrInvalidCredentials
	}

	ok, err := auth.Verify(password, user.Password)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("login: verificação de senha falhou")
		return fleet.User{}, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Str("user_id", user.ID).Msg("login: senha inválida")
		return fleet.User{}, ErrInvalidCredentials
	}

	return user.Public(), nil
}

// Login autentica e emite o token de acesso.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, _, err := s.jwt.GenerateAccessToken(user.ID, user.Name, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   time.Now().UTC().Add(s.jwt.TTL()),
		User:        user,
	}, nil
}
