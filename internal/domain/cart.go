package domain

import "time"

// Image is a displayable image reference denormalized into cart lines.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
}

// ProductRef is the minimal product identity copied into a line when the line
// is written. It goes stale if the catalog changes afterwards; lines are
// refreshed on every rebuild, not on catalog writes.
type ProductRef struct {
	ID            string `json:"id"`
	Handle        string `json:"handle"`
	Title         string `json:"title"`
	FeaturedImage Image  `json:"featuredImage"`
}

// SelectedOption is one name/value pair of a variant's options.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Merchandise identifies the purchasable variant a line points at, including
// its denormalized display fields.
type Merchandise struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
	Product         ProductRef       `json:"product"`
}

// BackendMeta is opaque pass-through metadata tying a line to an external
// order system. It is preserved across updates to the same line.
type BackendMeta struct {
	LineID    string `json:"lineId,omitempty"`
	ProductID int64  `json:"productId,omitempty"`
	ObjectID  int64  `json:"objectId,omitempty"`
	CartID    int64  `json:"cartId,omitempty"`
	CartType  string `json:"cartType,omitempty"`
	Type      string `json:"type,omitempty"`
	GroupID   string `json:"groupId,omitempty"`
	SKUCode   string `json:"skuCode,omitempty"`
}

// LineCost holds the derived monetary total of one line.
type LineCost struct {
	TotalAmount Money `json:"totalAmount"`
}

// CartItem is one distinct merchandise entry in a cart. A line with
// quantity <= 0 must not exist.
type CartItem struct {
	ID          string       `json:"id"`
	Quantity    int          `json:"quantity"`
	Cost        LineCost     `json:"cost"`
	Merchandise Merchandise  `json:"merchandise"`
	Backend     *BackendMeta `json:"backend,omitempty"`
}

// CartCost carries the derived cart totals. TotalTaxAmount is a fixed zero
// placeholder; tax is out of scope of this pricing model.
type CartCost struct {
	SubtotalAmount Money `json:"subtotalAmount"`
	TotalAmount    Money `json:"totalAmount"`
	TotalTaxAmount Money `json:"totalTaxAmount"`
	DiscountAmount Money `json:"discountAmount"`
}

// Cart is the aggregate root. Cost and TotalQuantity are always functions of
// Lines and AppliedCoupons at the moment of last recomputation; callers never
// set them directly.
type Cart struct {
	ID             string          `json:"id"`
	CheckoutURL    string          `json:"checkoutUrl"`
	Lines          []CartItem      `json:"lines"`
	AppliedCoupons []AppliedCoupon `json:"appliedCoupons"`
	TotalQuantity  int             `json:"totalQuantity"`
	Cost           CartCost        `json:"cost"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
