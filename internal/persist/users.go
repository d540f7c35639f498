package persist

import (
	"context"
	"fmt"

	"github.com/gestaozabele/fireguard/internal/cache"
	"github.com/gestaozabele/fireguard/internal/fleet"
)

// GetUsers devolve os usuários com senha. Quando o remoto responde, sua lista vale
// mesmo vazia. Sem remoto, grava os padrões no espelho local se ele não tiver usuários.
func (f *Facade) GetUsers(ctx context.Context) []fleet.StoredUser {
	unlock := f.locks.lock(cache.KeyUsers)
	defer unlock()
	return f.users(ctx)
}

func (f *Facade) users(ctx context.Context) []fleet.StoredUser {
	if users, ok := readRemote(ctx, f, EntityUsers, f.listRemoteUsers); ok {
		return users
	}

	users, _ := readLocal[fleet.StoredUser](ctx, f, EntityUsers, cache.KeyUsers)
	if len(users) > 0 {
		return users
	}

	defaults := fleet.DefaultUsers()
	if err := cache.SetJSON(ctx, f.local, cache.KeyUsers, defaults); err != nil {
		f.logger.Error().Err(err).Msg("falha ao gravar usuários padrão no espelho local")
	}
	return defaults
}

// usersForWrite é a base das gravações: a leitura normal mais os registros locais pendentes.
func (f *Facade) usersForWrite(ctx context.Context) []fleet.StoredUser {
	return withPending(ctx, f, EntityUsers, cache.KeyUsers, f.users(ctx), func(u fleet.StoredUser) string { return u.ID })
}

func (f *Facade) listRemoteUsers(ctx context.Context) ([]fleet.StoredUser, error) {
	return f.remote.ListUsers(ctx)
}

// FindUserByUsername procura pelo login exato.
func (f *Facade) FindUserByUsername(ctx context.Context, username string) (fleet.StoredUser, error) {
	for _, u := range f.GetUsers(ctx) {
		if u.Username == username {
			return u, nil
		}
	}
	return fleet.StoredUser{}, fleet.ErrNotFound
}

// SaveUser substitui ou acrescenta o usuário pelo id.
func (f *Facade) SaveUser(ctx context.Context, user fleet.StoredUser) error {
	unlock := f.locks.lock(cache.KeyUsers)
	defer unlock()

	current := f.usersForWrite(ctx)
	replaced := false
	for i := range current {
		if current[i].ID == user.ID {
			current[i] = user
			replaced = true
			break
		}
	}
	if !replaced {
		current = append(current, user)
	}

	if err := cache.SetJSON(ctx, f.local, cache.KeyUsers, current); err != nil {
		return fmt.Errorf("gravar usuários localmente: %w", err)
	}

	if f.remote != nil {
		if err := f.remote.UpsertUser(ctx, user); err != nil {
			f.remoteWriteFailed(ctx, EntityUsers, OpUpsert, user.ID, err)
		}
	}
	return nil
}

// DeleteUser remove o usuário. Remover um id inexistente não é erro.
func (f *Facade) DeleteUser(ctx context.Context, id string) error {
	unlock := f.locks.lock(cache.KeyUsers)
	defer unlock()

	current := f.usersForWrite(ctx)
	kept := make([]fleet.StoredUser, 0, len(current))
	for _, u := range current {
		if u.ID != id {
			kept = append(kept, u)
		}
	}

	if err := cache.SetJSON(ctx, f.local, cache.KeyUsers, kept); err != nil {
		return fmt.Errorf("gravar usuários localmente: %w", err)
	}

	if f.remote == nil {
		f.clearDivergences(ctx, EntityUsers, id)
		return nil
	}
	if err := f.remote.DeleteUser(ctx, id); err != nil {
		f.remoteWriteFailed(ctx, EntityUsers, OpDelete, id, err)
		return nil
	}
	f.clearDivergences(ctx, EntityUsers, id)
	return nil
}
