package model

// BirthAppend is one row of a vendor birth-month append file.
type BirthAppend struct {
	CustomerID string `json:"customer_id"`
	ShopID     string `json:"shop_id"`
	Month      int    `json:"month"`
	Year       string `json:"year"`
}

// Usable reports whether the row identifies a customer and carries a month.
func (b BirthAppend) Usable() bool {
	return b.CustomerID != "" && b.ShopID != "" && ValidMonth(b.Month)
}
