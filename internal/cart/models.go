package cart

// CartItem is one line of the active cart.
type CartItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CartResponse struct {
	Items []CartItem `json:"items"`
}
