package remote

import (
	"time"

	"github.com/gestaozabele/fireguard/internal/fleet"
)

// As structs abaixo espelham as colunas remotas (snake_case) e fazem a tradução
// para o modelo da aplicação (camelCase) nos dois sentidos.

type userRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type systemConfigRow struct {
	ID      int     `json:"id"`
	AppName string  `json:"app_name"`
	LogoURL *string `json:"logo_url"`
}

type extinguisherRow struct {
	ID               string    `json:"id"`
	Code             string    `json:"code"`
	Type             string    `json:"type"`
	Capacity         string    `json:"capacity"`
	Location         string    `json:"location"`
	ManufactureDate  time.Time `json:"manufacture_date"`
	ExpiryDate       time.Time `json:"expiry_date"`
	Status           string    `json:"status"`
	LastInspectionID *string   `json:"last_inspection_id"`
}

type inspectionRow struct {
	ID             string          `json:"id"`
	ExtinguisherID *string         `json:"extinguisher_id"`
	Date           time.Time       `json:"date"`
	Inspector      string          `json:"inspector"`
	Responses      map[string]bool `json:"responses"`
	Notes          *string         `json:"notes"`
	Status         string          `json:"status"`
	PhotoURL       *string         `json:"photo_url"`
}

func (r userRow) toModel() fleet.StoredUser {
	return fleet.StoredUser{
		User: fleet.User{
			ID:       r.ID,
			Name:     r.Name,
			Username: r.Username,
			Role:     fleet.Role(r.Role),
		},
		Password: r.Password,
	}
}

func userFromModel(u fleet.StoredUser) userRow {
	return userRow{ID: u.ID, Name: u.Name, Username: u.Username, Password: u.Password, Role: string(u.Role)}
}

func (r systemConfigRow) toModel() fleet.SystemConfig {
	return fleet.SystemConfig{AppName: r.AppName, LogoURL: deref(r.LogoURL)}
}

func systemConfigFromModel(c fleet.SystemConfig) systemConfigRow {
	return systemConfigRow{ID: fleet.SystemConfigID, AppName: c.AppName, LogoURL: optional(c.LogoURL)}
}

func (r extinguisherRow) toModel() fleet.Extinguisher {
	return fleet.Extinguisher{
		ID:               r.ID,
		Code:             r.Code,
		Type:             r.Type,
		Capacity:         r.Capacity,
		Location:         r.Location,
		ManufactureDate:  formatDate(r.ManufactureDate),
		ExpiryDate:       formatDate(r.ExpiryDate),
		Status:           fleet.Status(r.Status),
		LastInspectionID: deref(r.LastInspectionID),
	}
}

func extinguisherFromModel(e fleet.Extinguisher) (extinguisherRow, error) {
	manufacture, err := fleet.ParseDate(e.ManufactureDate)
	if err != nil {
		return extinguisherRow{}, err
	}
	expiry, err := fleet.ParseDate(e.ExpiryDate)
	if err != nil {
		return extinguisherRow{}, err
	}
	return extinguisherRow{
		ID:               e.ID,
		Code:             e.Code,
		Type:             e.Type,
		Capacity:         e.Capacity,
		Location:         e.Location,
		ManufactureDate:  manufacture,
		ExpiryDate:       expiry,
		Status:           string(e.Status),
		LastInspectionID: optional(e.LastInspectionID),
	}, nil
}

func (r inspectionRow) toModel() fleet.Inspection {
	responses := r.Responses
	if responses == nil {
		responses = map[string]bool{}
	}
	return fleet.Inspection{
		ID:             r.ID,
		ExtinguisherID: deref(r.ExtinguisherID),
		Date:           r.Date.UTC().Format(time.RFC3339),
		Inspector:      r.Inspector,
		Responses:      responses,
		Notes:          deref(r.Notes),
		Status:         fleet.InspectionStatus(r.Status),
		PhotoURL:       deref(r.PhotoURL),
	}
}

func inspectionFromModel(i fleet.Inspection) (inspectionRow, error) {
	date, err := fleet.ParseDate(i.Date)
	if err != nil {
		return inspectionRow{}, err
	}
	responses := i.Responses
	if responses == nil {
		responses = map[string]bool{}
	}
	return inspectionRow{
		ID:             i.ID,
		ExtinguisherID: optional(i.ExtinguisherID),
		Date:           date,
		Inspector:      i.Inspector,
		Responses:      responses,
		Notes:          optional(i.Notes),
		Status:         string(i.Status),
		PhotoURL:       optional(i.PhotoURL),
	}, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(fleet.DateLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
