package domain

import "time"

// Product is a catalog product as seen by the cart engine.
type Product struct {
	ID            string    `json:"id"`
	Handle        string    `json:"handle"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	FeaturedImage Image     `json:"featuredImage"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Variant is one purchasable variant of a product. Its ID is the merchandise
// id referenced by cart lines; BackendObjectID is the numeric identifier the
// external order system addresses it by.
type Variant struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"productId"`
	Title           string           `json:"title"`
	SKU             string           `json:"sku"`
	Price           Money            `json:"price"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
	BackendObjectID int64            `json:"backendObjectId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}
