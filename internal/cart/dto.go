// AngelaMos | 2026
// dto.go

package cart

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

type CartResponse struct {
	Items    []LineItem `json:"items"`
	Count    int        `json:"count"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Total    float64    `json:"total"`
}
