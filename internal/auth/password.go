package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/alexedwards/argon2id"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

const hashPrefix = "$argon2id$"

// Hash gera um hash Argon2id (inclui os parâmetros dentro do próprio hash).
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, params)
}

// IsHash informa se o valor gravado já está no formato Argon2id.
func IsHash(stored string) bool {
	return strings.HasPrefix(stored, hashPrefix)
}

// Verify compara a senha com o valor gravado. Valores Argon2id são verificados
// pelo hash; os demais são senhas em texto e comparados em tempo constante.
func Verify(password, stored string) (bool, error) {
	if IsHash(stored) {
		return argon2id.ComparePasswordAndHash(password, stored)
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1, nil
}
