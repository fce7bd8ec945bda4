package models

// Cart représente le panier d'un compte restaurant, stocké dans Redis (clé "cart:<id>")
type Cart struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	RestaurantID string     `json:"restaurant_id"`
	Items        []CartItem `json:"items"`
	TotalItems   int        `json:"total_items"`
	TotalQty     int        `json:"total_quantity"`
	TotalAmount  float64    `json:"total_amount"` // RWF
}

type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CalcTotal recalcule le montant total depuis les lignes du panier
func (c *Cart) CalcTotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
