// Package snapshot encodes the minimal persisted projection of a cart into an
// opaque base64url token suitable for cookie storage, and decodes it back.
//
// The snapshot intentionally omits prices, denormalized product fields, and
// coupon definitions: those are rehydrated from the live catalogs on every
// load so that client-supplied state is never trusted for money.
package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"storefront-cart/internal/domain"
)

// Line is one persisted cart line: just enough to re-resolve the merchandise
// and rebuild the full line.
type Line struct {
	MerchandiseID string              `json:"m"`
	Quantity      int                 `json:"q"`
	LineID        string              `json:"l,omitempty"`
	Backend       *domain.BackendMeta `json:"b,omitempty"`
}

// Snapshot is the durable projection of a cart. Field order is fixed by the
// struct definition, which keeps encoding deterministic.
type Snapshot struct {
	ID        string   `json:"id"`
	Lines     []Line   `json:"ln"`
	Coupons   []string `json:"cp,omitempty"`
	UpdatedAt int64    `json:"ts"`
}

// FromCart projects a cart down to its snapshot.
func FromCart(cart domain.Cart) Snapshot {
	snap := Snapshot{
		ID:        cart.ID,
		Lines:     make([]Line, 0, len(cart.Lines)),
		UpdatedAt: cart.UpdatedAt.Unix(),
	}
	for _, line := range cart.Lines {
		entry := Line{
			MerchandiseID: line.Merchandise.ID,
			Quantity:      line.Quantity,
			Backend:       line.Backend,
		}
		if line.ID != line.Merchandise.ID {
			entry.LineID = line.ID
		}
		snap.Lines = append(snap.Lines, entry)
	}
	for _, applied := range cart.AppliedCoupons {
		snap.Coupons = append(snap.Coupons, applied.Coupon.Code)
	}
	return snap
}

// Time returns the snapshot timestamp as a UTC time.
func (s Snapshot) Time() time.Time {
	return time.Unix(s.UpdatedAt, 0).UTC()
}

// Encode serializes the snapshot to compact JSON and base64url-encodes it.
func Encode(snap Snapshot) string {
	if snap.Lines == nil {
		snap.Lines = []Line{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		// Snapshot is plain data; Marshal cannot fail on it.
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// envelope defers line parsing so one malformed line drops that line instead
// of failing the whole decode.
type envelope struct {
	ID        string            `json:"id"`
	Lines     []json.RawMessage `json:"ln"`
	Coupons   []string          `json:"cp"`
	UpdatedAt int64             `json:"ts"`
}

// Decode is the inverse of Encode. It never fails: any parse error,
// structural mismatch, or missing cart id yields nil, which callers treat as
// "no cart". A corrupted or hand-edited cookie degrades to an absent cart,
// never to a request error.
func Decode(token string) *Snapshot {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	if strings.TrimSpace(env.ID) == "" {
		return nil
	}

	snap := &Snapshot{
		ID:        env.ID,
		Lines:     make([]Line, 0, len(env.Lines)),
		UpdatedAt: env.UpdatedAt,
	}
	for _, raw := range env.Lines {
		var line Line
		if err := json.Unmarshal(raw, &line); err != nil {
			continue
		}
		if strings.TrimSpace(line.MerchandiseID) == "" || line.Quantity <= 0 {
			continue
		}
		snap.Lines = append(snap.Lines, line)
	}
	for _, code := range env.Coupons {
		if strings.TrimSpace(code) == "" {
			continue
		}
		snap.Coupons = append(snap.Coupons, code)
	}
	return snap
}
