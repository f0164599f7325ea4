package cart

import (
	"context"
	"fmt"
	"strings"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/repository/catalog"
)

type lineInputKind int

const (
	lineByMerchandise lineInputKind = iota
	lineByBackendObject
)

// LineInput identifies one merchandise entry in an add or update request.
// It is a tagged variant with two shapes: the legacy shape keyed by
// merchandise id, and the backend shape keyed by the external order system's
// numeric object id. Use the constructors; the zero value is not valid.
type LineInput struct {
	kind          lineInputKind
	merchandiseID string
	objectID      int64

	// Quantity is a delta for AddToCart and an absolute value for
	// UpdateCart; zero or negative removes the line on update.
	Quantity int

	// LineID targets an existing line explicitly. Optional.
	LineID string

	// Backend carries pass-through metadata to store on the line. Optional.
	Backend *domain.BackendMeta
}

// MerchandiseLine builds a legacy-shaped input keyed by merchandise id.
func MerchandiseLine(merchandiseID string, quantity int) LineInput {
	return LineInput{
		kind:          lineByMerchandise,
		merchandiseID: strings.TrimSpace(merchandiseID),
		Quantity:      quantity,
	}
}

// BackendLine builds a backend-shaped input keyed by numeric object id.
func BackendLine(objectID int64, quantity int) LineInput {
	return LineInput{
		kind:     lineByBackendObject,
		objectID: objectID,
		Quantity: quantity,
	}
}

// targetLineID is the id a removal for this input should match.
func (in LineInput) targetLineID() string {
	if in.LineID != "" {
		return in.LineID
	}
	return in.merchandiseID
}

func (in LineInput) describe() string {
	if in.kind == lineByBackendObject {
		return fmt.Sprintf("backend(object_id=%d line_id=%s)", in.objectID, in.LineID)
	}
	return fmt.Sprintf("merchandise(id=%s line_id=%s)", in.merchandiseID, in.LineID)
}

// backendMeta returns the metadata to store on the line, guaranteeing the
// object id is carried for backend-shaped inputs so later hydrations can
// fall back to it.
func (in LineInput) backendMeta() *domain.BackendMeta {
	if in.kind != lineByBackendObject {
		return in.Backend
	}
	meta := in.Backend
	if meta == nil {
		meta = &domain.BackendMeta{}
	} else {
		dup := *meta
		meta = &dup
	}
	if meta.ObjectID == 0 {
		meta.ObjectID = in.objectID
	}
	return meta
}

// resolveForAdd resolves the variant for a fresh add.
func (s *Service) resolveForAdd(ctx context.Context, in LineInput) (*catalog.Resolution, lineOptions) {
	opts := lineOptions{lineID: in.LineID, backend: in.backendMeta()}
	switch in.kind {
	case lineByBackendObject:
		if res, err := s.catalog.ResolveByBackendObjectID(ctx, in.objectID); err == nil {
			return res, opts
		}
	default:
		if in.merchandiseID == "" {
			return nil, opts
		}
		if res, err := s.catalog.ResolveByMerchandiseID(ctx, in.merchandiseID); err == nil {
			return res, opts
		}
	}
	return nil, opts
}

// resolveForUpdate resolves the variant for an absolute-quantity update.
// Backend-shaped updates target an existing line by its backend line id; if
// that line's merchandise id no longer resolves, the lookup falls back to the
// line's cached backend object id, then to the literal id as a merchandise
// id, before giving up and skipping the update.
func (s *Service) resolveForUpdate(ctx context.Context, cart *domain.Cart, in LineInput) (*catalog.Resolution, lineOptions) {
	opts := lineOptions{lineID: in.LineID, backend: in.backendMeta()}
	if in.kind == lineByMerchandise {
		if in.merchandiseID == "" {
			return nil, opts
		}
		if res, err := s.catalog.ResolveByMerchandiseID(ctx, in.merchandiseID); err == nil {
			return res, opts
		}
		return nil, opts
	}

	if in.LineID != "" {
		if idx := findLineByID(cart.Lines, in.LineID); idx >= 0 {
			line := cart.Lines[idx]
			if res, err := s.catalog.ResolveByMerchandiseID(ctx, line.Merchandise.ID); err == nil {
				return res, opts
			}
			if line.Backend != nil && line.Backend.ObjectID != 0 {
				if res, err := s.catalog.ResolveByBackendObjectID(ctx, line.Backend.ObjectID); err == nil {
					return res, opts
				}
			}
			if res, err := s.catalog.ResolveByMerchandiseID(ctx, in.LineID); err == nil {
				return res, opts
			}
		}
	}
	if in.objectID != 0 {
		if res, err := s.catalog.ResolveByBackendObjectID(ctx, in.objectID); err == nil {
			return res, opts
		}
	}
	return nil, opts
}
