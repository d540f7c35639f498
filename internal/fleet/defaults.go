package fleet

// DefaultExtinguisherTypes são os tipos criados na primeira execução.
func DefaultExtinguisherTypes() []ExtinguisherType {
	return []ExtinguisherType{
		{ID: "1", Name: "Pó Químico Seco"},
		{ID: "2", Name: "Dióxido de Carbono"},
		{ID: "3", Name: "Água Pressurizada"},
		{ID: "4", Name: "Espuma Mecânica"},
	}
}

// Ids dos itens padrão do checklist.
const (
	ChecklistManometer = "manometer"
	ChecklistSeal      = "seal"
	ChecklistHose      = "hose"
	ChecklistSignage   = "signage"
	ChecklistAccess    = "access"
	ChecklistCasing    = "casing"
)

// DefaultChecklistItems são os itens de inspeção criados na primeira execução.
func DefaultChecklistItems() []ChecklistItem {
	return []ChecklistItem{
		{ID: ChecklistManometer, Label: "Manômetro na faixa verde"},
		{ID: ChecklistSeal, Label: "Lacre intacto e original"},
		{ID: ChecklistHose, Label: "Mangueira sem rachaduras"},
		{ID: ChecklistSignage, Label: "Sinalização visível"},
		{ID: ChecklistAccess, Label: "Acesso desobstruído"},
		{ID: ChecklistCasing, Label: "Casco sem corrosão"},
	}
}

// DefaultUsers garante um administrador e um brigadista locais.
func DefaultUsers() []StoredUser {
	return []StoredUser{
		{User: User{ID: "1", Name: "Administrador Principal", Username: "admin", Role: RoleAdmin}, Password: "admin123"},
		{User: User{ID: "2", Name: "Brigadista Alpha", Username: "brigadista", Role: RoleBrigadista}, Password: "fogo123"},
	}
}
