package fleet

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound                = errors.New("registro não encontrado")
	ErrInvalidRole             = errors.New("papel inválido")
	ErrInvalidStatus           = errors.New("status inválido")
	ErrInvalidInspectionStatus = errors.New("status de inspeção inválido")
	ErrInvalidDate             = errors.New("data inválida")
)

// Role identifica o perfil de acesso.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleBrigadista Role = "brigadista"
)

// Status é o estado operacional gravado do extintor.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusExpired     Status = "expired"
)

// InspectionStatus resume o resultado de uma inspeção.
type InspectionStatus string

const (
	InspectionOK            InspectionStatus = "Conforme"
	InspectionNonConforming InspectionStatus = "Não Conforme"
	InspectionCritical      InspectionStatus = "Crítico"
)

// DefaultAppName é usado quando não há configuração gravada.
const DefaultAppName = "FireGuard"

// SystemConfigID é a chave fixa da linha única de configuração.
const SystemConfigID = 1

// DateLayout é o formato das datas de fabricação e validade.
const DateLayout = "2006-01-02"

// User é a visão reduzida do usuário, sem senha.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// StoredUser é o usuário como persistido, incluindo a senha.
type StoredUser struct {
	User
	Password string `json:"password,omitempty"`
}

// SystemConfig guarda a identidade visual da aplicação.
type SystemConfig struct {
	AppName string `json:"appName"`
	LogoURL string `json:"logoUrl,omitempty"`
}

// ExtinguisherType é um tipo de agente extintor.
type ExtinguisherType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChecklistItem é um item verificado em cada inspeção.
type ChecklistItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Extinguisher representa uma unidade física.
type Extinguisher struct {
	ID               string `json:"id"`
	Code             string `json:"code"`
	Type             string `json:"type"`
	Capacity         string `json:"capacity"`
	Location         string `json:"location"`
	ManufactureDate  string `json:"manufactureDate"`
	ExpiryDate       string `json:"expiryDate"`
	Status           Status `json:"status"`
	LastInspectionID string `json:"lastInspectionId,omitempty"`
}

// Inspection registra uma verificação de conformidade.
type Inspection struct {
	ID             string           `json:"id"`
	ExtinguisherID string           `json:"extinguisherId"`
	Date           string           `json:"date"`
	Inspector      string           `json:"inspector"`
	Responses      map[string]bool  `json:"responses"`
	Notes          string           `json:"notes"`
	Status         InspectionStatus `json:"status"`
	PhotoURL       string           `json:"photoUrl,omitempty"`
}

// DefaultSystemConfig devolve a configuração de fábrica.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{AppName: DefaultAppName}
}

// Public remove a senha.
func (u StoredUser) Public() User {
	return u.User
}

func NormalizeRole(role string) Role {
	return Role(strings.ToLower(strings.TrimSpace(role)))
}

func IsValidRole(role Role) bool {
	return role == RoleAdmin || role == RoleBrigadista
}

func NormalizeStatus(status string) Status {
	s := Status(strings.ToLower(strings.TrimSpace(status)))
	if s == "" {
		return StatusActive
	}
	return s
}

func IsValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusMaintenance, StatusExpired:
		return true
	}
	return false
}

func IsValidInspectionStatus(status InspectionStatus) bool {
	switch status {
	case InspectionOK, InspectionNonConforming, InspectionCritical:
		return true
	}
	return false
}

// ParseDate aceita YYYY-MM-DD ou RFC3339.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}
