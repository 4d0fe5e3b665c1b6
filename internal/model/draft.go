package model

// MenuDraft is the full in-progress editable menu/restaurant configuration.
// Slices are never tagged omitempty so that a saved draft loads back equal.
type MenuDraft struct {
	Restaurant Restaurant `json:"restaurant"`
	Categories []Category `json:"categories"`
	Items      []MenuItem `json:"items"`
}

// Restaurant holds the restaurant profile edited alongside the menu.
type Restaurant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Currency     string `json:"currency"`
	LogoURL      string `json:"logoUrl"`
	PaymentQRURL string `json:"paymentQrUrl"`
}

// Category groups menu items.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// MenuItem is a single dish or drink on the menu.
type MenuItem struct {
	ID          string   `json:"id"`
	CategoryID  string   `json:"categoryId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"priceCents"`
	ImageURL    string   `json:"imageUrl"`
	Available   bool     `json:"available"`
	Tags        []string `json:"tags"`
}
