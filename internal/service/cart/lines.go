package cart

import (
	"storefront-cart/internal/domain"
	"storefront-cart/internal/repository/catalog"
)

// lineOptions carries the optional targeting and metadata of a line write.
type lineOptions struct {
	lineID  string
	backend *domain.BackendMeta
}

// upsertLine adds deltaQuantity to an existing line's quantity, or inserts a
// new line. A resulting quantity of zero or less removes the line entirely;
// that is how "decrement to zero" is expressed.
func upsertLine(cart *domain.Cart, res catalog.Resolution, deltaQuantity int, opts lineOptions) {
	idx := findLine(cart.Lines, opts.lineID, res.Variant.ID)
	quantity := deltaQuantity
	if idx >= 0 {
		quantity += cart.Lines[idx].Quantity
	}
	writeLine(cart, res, quantity, idx, opts)
}

// setLineQuantity is upsertLine with an absolute quantity instead of a delta.
func setLineQuantity(cart *domain.Cart, res catalog.Resolution, quantity int, opts lineOptions) {
	idx := findLine(cart.Lines, opts.lineID, res.Variant.ID)
	writeLine(cart, res, quantity, idx, opts)
}

// writeLine rebuilds the line from scratch and replaces it in place, keeping
// its list position, or appends it when new. Quantity <= 0 removes instead.
func writeLine(cart *domain.Cart, res catalog.Resolution, quantity, idx int, opts lineOptions) {
	if quantity <= 0 {
		if idx >= 0 {
			cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
		}
		return
	}

	var existingBackend *domain.BackendMeta
	if idx >= 0 {
		existingBackend = cart.Lines[idx].Backend
	}
	line := buildLine(res, quantity, opts.lineID, mergeBackend(existingBackend, opts.backend))

	if idx >= 0 {
		cart.Lines[idx] = line
	} else {
		cart.Lines = append(cart.Lines, line)
	}
}

// removeLines filters out lines whose id matches one of the given ids. Lines
// with an empty id are never removed this way: only explicit matches go.
func removeLines(cart *domain.Cart, lineIDs []string) {
	ids := make(map[string]struct{}, len(lineIDs))
	for _, id := range lineIDs {
		if id != "" {
			ids[id] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return
	}

	kept := cart.Lines[:0]
	for _, line := range cart.Lines {
		if line.ID != "" {
			if _, gone := ids[line.ID]; gone {
				continue
			}
		}
		kept = append(kept, line)
	}
	cart.Lines = kept
}

// buildLine produces the canonical line shape: denormalized product fields,
// refreshed price, and quantity-scaled cost.
func buildLine(res catalog.Resolution, quantity int, lineID string, backend *domain.BackendMeta) domain.CartItem {
	id := lineID
	if id == "" {
		id = res.Variant.ID
	}
	if backend != nil && backend.LineID == "" {
		backend.LineID = id
	}

	unit := res.Variant.Price.Float()
	return domain.CartItem{
		ID:       id,
		Quantity: quantity,
		Cost: domain.LineCost{
			TotalAmount: domain.NewMoney(unit*float64(quantity), res.Variant.Price.CurrencyCode),
		},
		Merchandise: domain.Merchandise{
			ID:              res.Variant.ID,
			Title:           res.Variant.Title,
			SelectedOptions: res.Variant.SelectedOptions,
			Product: domain.ProductRef{
				ID:            res.Product.ID,
				Handle:        res.Product.Handle,
				Title:         res.Product.Title,
				FeaturedImage: res.Product.FeaturedImage,
			},
		},
		Backend: backend,
	}
}

// mergeBackend overlays incoming metadata on what the line already carries.
// Existing fields survive when the incoming options do not supply them.
func mergeBackend(existing, incoming *domain.BackendMeta) *domain.BackendMeta {
	if incoming == nil {
		if existing == nil {
			return nil
		}
		dup := *existing
		return &dup
	}
	merged := *incoming
	if existing != nil {
		if merged.LineID == "" {
			merged.LineID = existing.LineID
		}
		if merged.ProductID == 0 {
			merged.ProductID = existing.ProductID
		}
		if merged.ObjectID == 0 {
			merged.ObjectID = existing.ObjectID
		}
		if merged.CartID == 0 {
			merged.CartID = existing.CartID
		}
		if merged.CartType == "" {
			merged.CartType = existing.CartType
		}
		if merged.Type == "" {
			merged.Type = existing.Type
		}
		if merged.GroupID == "" {
			merged.GroupID = existing.GroupID
		}
		if merged.SKUCode == "" {
			merged.SKUCode = existing.SKUCode
		}
	}
	return &merged
}

func findLine(lines []domain.CartItem, lineID, merchandiseID string) int {
	if lineID != "" {
		return findLineByID(lines, lineID)
	}
	for i, line := range lines {
		if line.Merchandise.ID == merchandiseID {
			return i
		}
	}
	return -1
}

func findLineByID(lines []domain.CartItem, lineID string) int {
	if lineID == "" {
		return -1
	}
	for i, line := range lines {
		if line.ID == lineID {
			return i
		}
	}
	return -1
}
