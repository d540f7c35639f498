package remote

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/fireguard/internal/db"
	"github.com/gestaozabele/fireguard/internal/fleet"
)

// Schema é o DDL de referência das seis tabelas remotas.
//
//go:embed schema.sql
var Schema string

// Repository lê e grava as coleções no banco remoto.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria o adaptador sobre um pool já configurado.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Close encerra o pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Probe faz a leitura mínima usada para classificar a conexão.
func (r *Repository) Probe(ctx context.Context) error {
	rows, err := r.pool.Query(ctx, `SELECT id FROM extinguisher_types LIMIT 1`)
	if err != nil {
		return err
	}
	rows.Close()
	return rows.Err()
}

// ApplySchema cria as tabelas ausentes.
func (r *Repository) ApplySchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

func (r *Repository) ListUsers(ctx context.Context) ([]fleet.StoredUser, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, username, password, role FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []fleet.StoredUser{}
	for rows.Next() {
		var row userRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Username, &row.Password, &row.Role); err != nil {
			return nil, err
		}
		users = append(users, row.toModel())
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

func (r *Repository) UpsertUser(ctx context.Context, user fleet.StoredUser) error {
	const query = `
        INSERT INTO users (id, name, username, password, role)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            username = EXCLUDED.username,
            password = EXCLUDED.password,
            role = EXCLUDED.role
    `
	row := userFromModel(user)
	_, err := r.pool.Exec(ctx, query, row.ID, row.Name, row.Username, row.Password, row.Role)
	return err
}

func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *Repository) GetSystemConfig(ctx context.Context) (fleet.SystemConfig, error) {
	var row systemConfigRow
	err := r.pool.QueryRow(ctx, `SELECT id, app_name, logo_url FROM system_config WHERE id = $1`, fleet.SystemConfigID).
		Scan(&row.ID, &row.AppName, &row.LogoURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fleet.SystemConfig{}, fleet.ErrNotFound
		}
		return fleet.SystemConfig{}, err
	}
	return row.toModel(), nil
}

func (r *Repository) UpsertSystemConfig(ctx context.Context, cfg fleet.SystemConfig) error {
	const query = `
        INSERT INTO system_config (id, app_name, logo_url)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET
            app_name = EXCLUDED.app_name,
            logo_url = EXCLUDED.logo_url
    `
	row := systemConfigFromModel(cfg)
	_, err := r.pool.Exec(ctx, query, row.ID, row.AppName, row.LogoURL)
	return err
}

func (r *Repository) ListExtinguisherTypes(ctx context.Context) ([]fleet.ExtinguisherType, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM extinguisher_types`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []fleet.ExtinguisherType{}
	for rows.Next() {
		var t fleet.ExtinguisherType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return types, nil
}

// ReplaceExtinguisherTypes apaga a tabela e reinsere a lista inteira.
func (r *Repository) ReplaceExtinguisherTypes(ctx context.Context, types []fleet.ExtinguisherType) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM extinguisher_types`); err != nil {
			return fmt.Errorf("limpar tipos: %w", err)
		}
		for _, t := range types {
			if _, err := tx.Exec(ctx, `INSERT INTO extinguisher_types (id, name) VALUES ($1, $2)`, t.ID, t.Name); err != nil {
				return fmt.Errorf("inserir tipo %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) ListChecklistItems(ctx context.Context) ([]fleet.ChecklistItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, label FROM checklist_items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []fleet.ChecklistItem{}
	for rows.Next() {
		var item fleet.ChecklistItem
		if err := rows.Scan(&item.ID, &item.Label); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// ReplaceChecklistItems apaga a tabela e reinsere a lista inteira.
func (r *Repository) ReplaceChecklistItems(ctx context.Context, items []fleet.ChecklistItem) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM checklist_items`); err != nil {
			return fmt.Errorf("limpar checklist: %w", err)
		}
		for _, item := range items {
			if _, err := tx.Exec(ctx, `INSERT INTO checklist_items (id, label) VALUES ($1, $2)`, item.ID, item.Label); err != nil {
				return fmt.Errorf("inserir item %s: %w", item.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) ListExtinguishers(ctx context.Context) ([]fleet.Extinguisher, error) {
	const query = `
        SELECT id, code, type, capacity, location, manufacture_date, expiry_date, status, last_inspection_id
        FROM extinguishers
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exts := []fleet.Extinguisher{}
	for rows.Next() {
		var row extinguisherRow
		if err := rows.Scan(
			&row.ID,
			&row.Code,
			&row.Type,
			&row.Capacity,
			&row.Location,
			&row.ManufactureDate,
			&row.ExpiryDate,
			&row.Status,
			&row.LastInspectionID,
		); err != nil {
			return nil, err
		}
		exts = append(exts, row.toModel())
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return exts, nil
}

func (r *Repository) UpsertExtinguisher(ctx context.Context, ext fleet.Extinguisher) error {
	const query = `
        INSERT INTO extinguishers (id, code, type, capacity, location, manufacture_date, expiry_date, status, last_inspection_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (id) DO UPDATE SET
            code = EXCLUDED.code,
            type = EXCLUDED.type,
            capacity = EXCLUDED.capacity,
            location = EXCLUDED.location,
            manufacture_date = EXCLUDED.manufacture_date,
            expiry_date = EXCLUDED.expiry_date,
            status = EXCLUDED.status,
            last_inspection_id = EXCLUDED.last_inspection_id
    `
	row, err := extinguisherFromModel(ext)
	if err != nil {
		return fmt.Errorf("extintor %s: %w", ext.ID, err)
	}
	_, err = r.pool.Exec(ctx, query,
		row.ID,
		row.Code,
		row.Type,
		row.Capacity,
		row.Location,
		row.ManufactureDate,
		row.ExpiryDate,
		row.Status,
		row.LastInspectionID,
	)
	return err
}

// SetLastInspection atualiza apenas a referência à última inspeção.
func (r *Repository) SetLastInspection(ctx context.Context, extinguisherID, inspectionID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE extinguishers SET last_inspection_id = $2 WHERE id = $1`, extinguisherID, inspectionID)
	return err
}

func (r *Repository) ListInspections(ctx context.Context) ([]fleet.Inspection, error) {
	const query = `
        SELECT id, extinguisher_id, date, inspector, responses, notes, status, photo_url
        FROM inspections
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inspections := []fleet.Inspection{}
	for rows.Next() {
		var row inspectionRow
		if err := rows.Scan(
			&row.ID,
			&row.ExtinguisherID,
			&row.Date,
			&row.Inspector,
			&row.Responses,
			&row.Notes,
			&row.Status,
			&row.PhotoURL,
		); err != nil {
			return nil, err
		}
		inspections = append(inspections, row.toModel())
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return inspections, nil
}

// InsertInspection só insere; inspeções são imutáveis.
func (r *Repository) InsertInspection(ctx context.Context, ins fleet.Inspection) error {
	const query = `
        INSERT INTO inspections (id, extinguisher_id, date, inspector, responses, notes, status, photo_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	row, err := inspectionFromModel(ins)
	if err != nil {
		return fmt.Errorf("inspeção %s: %w", ins.ID, err)
	}
	_, err = r.pool.Exec(ctx, query,
		row.ID,
		row.ExtinguisherID,
		row.Date,
		row.Inspector,
		row.Responses,
		row.Notes,
		row.Status,
		row.PhotoURL,
	)
	return err
}
