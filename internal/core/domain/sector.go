package domain

// Sector is a partner organization (bank, logistics firm, agri-tech vendor)
// farmers can connect with. Type is a free-text category.
type Sector struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Contact     string `json:"contact,omitempty"`
	Region      string `json:"region,omitempty"`
	Description string `json:"description,omitempty"`
}
