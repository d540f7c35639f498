package fleet

import "github.com/google/uuid"

// NewID gera identificador ordenado pelo tempo de criação.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
