package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/repository/catalog"
	couponrepo "storefront-cart/internal/repository/coupon"
	"storefront-cart/internal/snapshot"
)

// TokenStore is the persistence boundary: two opaque string tokens (cart id
// and encoded cart state) that the transport hands back on the next call for
// the same cart. The transport itself (cookie, header, file) is the caller's
// concern.
type TokenStore interface {
	Read(ctx context.Context) (cartID, state string)
	Write(ctx context.Context, cartID, state string) error
}

// Service is the cart store façade. It holds no per-cart state: every call
// reconstructs the cart from the persisted snapshot, mutates an in-memory
// copy, recomputes totals, and writes the result back. Two concurrent
// requests for the same cart each work on their own copy; the last write
// wins at the granularity of the whole snapshot.
type Service struct {
	catalog  catalog.Resolver
	coupons  couponrepo.Repository
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
	checkout string
	currency string
}

// Deps wires the catalog, coupon, and ambient dependencies of the façade.
type Deps struct {
	Catalog         catalog.Resolver
	Coupons         couponrepo.Repository
	Logger          *log.Logger
	Now             func() time.Time
	NewID           func() string
	CheckoutURL     string
	DefaultCurrency string
}

// New constructs the façade, defaulting the clock, id generator, and logger.
func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	currency := strings.ToUpper(strings.TrimSpace(deps.DefaultCurrency))
	if currency == "" {
		currency = "USD"
	}
	checkout := deps.CheckoutURL
	if checkout == "" {
		checkout = "/checkout"
	}
	return &Service{
		catalog:  deps.Catalog,
		coupons:  deps.Coupons,
		logger:   logger,
		now:      func() time.Time { return now().UTC() },
		newID:    newID,
		checkout: checkout,
		currency: currency,
	}
}

// CreateCart allocates a fresh empty cart with a new opaque id and persists
// its snapshot.
func (s *Service) CreateCart(ctx context.Context, tokens TokenStore) (*domain.Cart, error) {
	cart := s.emptyCart(s.newID())
	cart.UpdatedAt = s.now()
	s.recompute(cart)
	s.persist(ctx, tokens, cart)
	return cart, nil
}

// GetCart loads and recomputes the caller's cart. It returns (nil, nil) when
// no valid snapshot exists; it never fabricates an empty cart on read.
func (s *Service) GetCart(ctx context.Context, tokens TokenStore) (*domain.Cart, error) {
	cart := s.load(ctx, tokens)
	if cart == nil {
		return nil, nil
	}
	s.persist(ctx, tokens, cart)
	return cart, nil
}

// AddToCart resolves each requested line and upserts it into the cart,
// creating the cart first if none exists. Unresolvable merchandise is
// skipped per line; the remaining lines still apply.
func (s *Service) AddToCart(ctx context.Context, tokens TokenStore, lines []LineInput) (*domain.Cart, error) {
	cart := s.loadOrCreate(ctx, tokens)
	for _, in := range lines {
		res, opts := s.resolveForAdd(ctx, in)
		if res == nil {
			s.logger.Printf("cart service: add skipped, merchandise unresolvable input=%s", in.describe())
			continue
		}
		upsertLine(cart, *res, in.Quantity, opts)
	}
	return s.finish(ctx, tokens, cart)
}

// UpdateCart sets absolute quantities on the targeted lines. Quantity zero
// removes the line. Per-line resolution failures skip that line only.
func (s *Service) UpdateCart(ctx context.Context, tokens TokenStore, lines []LineInput) (*domain.Cart, error) {
	cart := s.loadOrCreate(ctx, tokens)
	for _, in := range lines {
		if in.Quantity <= 0 {
			s.removeTarget(ctx, cart, in)
			continue
		}
		res, opts := s.resolveForUpdate(ctx, cart, in)
		if res == nil {
			s.logger.Printf("cart service: update skipped, merchandise unresolvable input=%s", in.describe())
			continue
		}
		setLineQuantity(cart, *res, in.Quantity, opts)
	}
	return s.finish(ctx, tokens, cart)
}

// removeTarget drops the line a quantity <= 0 update points at. Inputs that
// carry a line or merchandise id need no catalog lookup; a backend-shaped
// input without one has to resolve its object id first to find the line.
func (s *Service) removeTarget(ctx context.Context, cart *domain.Cart, in LineInput) {
	if id := in.targetLineID(); id != "" {
		removeLines(cart, []string{id})
		return
	}
	res, opts := s.resolveForUpdate(ctx, cart, in)
	if res == nil {
		s.logger.Printf("cart service: remove skipped, merchandise unresolvable input=%s", in.describe())
		return
	}
	setLineQuantity(cart, *res, 0, opts)
}

// RemoveFromCart filters out the given line ids. Removing from a cart that
// does not exist yet yields a fresh empty cart, and unknown ids are ignored.
func (s *Service) RemoveFromCart(ctx context.Context, tokens TokenStore, lineIDs []string) (*domain.Cart, error) {
	cart := s.loadOrCreate(ctx, tokens)
	removeLines(cart, lineIDs)
	return s.finish(ctx, tokens, cart)
}

// ApplyCoupon attaches a coupon by code. Unknown codes fail with
// domain.ErrCouponNotFound; codes whose minimum subtotal is not met at this
// moment fail with domain.ErrCouponRequirementsNotMet. The gate compares the
// subtotal against the threshold rather than the would-be discount, so a
// free_shipping coupon with a met minimum applies even though it always
// contributes zero. Re-applying an already-applied code is a no-op.
func (s *Service) ApplyCoupon(ctx context.Context, tokens TokenStore, code string) (*domain.Cart, error) {
	cart := s.loadOrCreate(ctx, tokens)

	code = strings.TrimSpace(code)
	if hasCoupon(cart.AppliedCoupons, code) {
		return s.finish(ctx, tokens, cart)
	}

	found, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, err
	}

	// Minimum-subtotal gating is strict at first application only. A coupon
	// that later drops below the threshold stays applied and contributes
	// zero until the subtotal rises again.
	subtotal := lineSubtotal(cart.Lines)
	if found.MinimumSubtotal != nil && subtotal < *found.MinimumSubtotal {
		return nil, domain.ErrCouponRequirementsNotMet
	}

	cart.AppliedCoupons = append(cart.AppliedCoupons, domain.AppliedCoupon{Coupon: *found})
	return s.finish(ctx, tokens, cart)
}

// RemoveCoupon detaches a coupon by case-insensitive code. It always
// succeeds, including when the code was never applied.
func (s *Service) RemoveCoupon(ctx context.Context, tokens TokenStore, code string) (*domain.Cart, error) {
	cart := s.loadOrCreate(ctx, tokens)

	code = strings.TrimSpace(code)
	kept := cart.AppliedCoupons[:0]
	for _, applied := range cart.AppliedCoupons {
		if strings.EqualFold(applied.Coupon.Code, code) {
			continue
		}
		kept = append(kept, applied)
	}
	cart.AppliedCoupons = kept
	return s.finish(ctx, tokens, cart)
}

// finish stamps, recomputes, and best-effort persists a mutated cart.
func (s *Service) finish(ctx context.Context, tokens TokenStore, cart *domain.Cart) (*domain.Cart, error) {
	cart.UpdatedAt = s.now()
	s.recompute(cart)
	s.persist(ctx, tokens, cart)
	return cart, nil
}

func (s *Service) emptyCart(id string) *domain.Cart {
	return &domain.Cart{
		ID:             id,
		CheckoutURL:    s.checkout,
		Lines:          []domain.CartItem{},
		AppliedCoupons: []domain.AppliedCoupon{},
	}
}

// load decodes the caller's state token and rehydrates the cart, or returns
// nil when no valid snapshot exists.
func (s *Service) load(ctx context.Context, tokens TokenStore) *domain.Cart {
	_, state := tokens.Read(ctx)
	snap := snapshot.Decode(state)
	if snap == nil {
		return nil
	}
	return s.hydrate(ctx, *snap)
}

func (s *Service) loadOrCreate(ctx context.Context, tokens TokenStore) *domain.Cart {
	if cart := s.load(ctx, tokens); cart != nil {
		return cart
	}
	cart := s.emptyCart(s.newID())
	cart.UpdatedAt = s.now()
	return cart
}

// hydrate rebuilds a full cart from its snapshot against the live catalogs.
// Lines whose merchandise no longer resolves and coupon codes that no longer
// exist are dropped; this is intentional data loss, not an error. Cached
// discount amounts in old snapshots are never trusted: totals are recomputed
// from scratch.
func (s *Service) hydrate(ctx context.Context, snap snapshot.Snapshot) *domain.Cart {
	cart := s.emptyCart(snap.ID)
	cart.UpdatedAt = snap.Time()

	for _, line := range snap.Lines {
		res := s.resolveSnapshotLine(ctx, line)
		if res == nil {
			s.logger.Printf("cart service: dropped line merchandise_id=%s during hydration", line.MerchandiseID)
			continue
		}
		setLineQuantity(cart, *res, line.Quantity, lineOptions{lineID: line.LineID, backend: line.Backend})
	}

	for _, code := range snap.Coupons {
		if hasCoupon(cart.AppliedCoupons, code) {
			continue
		}
		found, err := s.coupons.FindByCode(ctx, code)
		if err != nil {
			s.logger.Printf("cart service: dropped coupon code=%s during hydration: %v", code, err)
			continue
		}
		cart.AppliedCoupons = append(cart.AppliedCoupons, domain.AppliedCoupon{Coupon: *found})
	}

	s.recompute(cart)
	return cart
}

func (s *Service) resolveSnapshotLine(ctx context.Context, line snapshot.Line) *catalog.Resolution {
	if res, err := s.catalog.ResolveByMerchandiseID(ctx, line.MerchandiseID); err == nil {
		return res
	}
	if line.Backend != nil && line.Backend.ObjectID != 0 {
		if res, err := s.catalog.ResolveByBackendObjectID(ctx, line.Backend.ObjectID); err == nil {
			return res
		}
	}
	return nil
}

// persist encodes the cart and hands both tokens to the persistence
// boundary. Write failures are swallowed: the in-memory cart returned to the
// caller is still correct for this request, only durability is lost.
func (s *Service) persist(ctx context.Context, tokens TokenStore, cart *domain.Cart) {
	state := snapshot.Encode(snapshot.FromCart(*cart))
	if err := tokens.Write(ctx, cart.ID, state); err != nil {
		s.logger.Printf("cart service: persist cart_id=%s failed: %v", cart.ID, err)
	}
}

func hasCoupon(applied []domain.AppliedCoupon, code string) bool {
	for _, a := range applied {
		if strings.EqualFold(a.Coupon.Code, code) {
			return true
		}
	}
	return false
}
