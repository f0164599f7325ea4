package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-cart/internal/domain"
	cartsvc "storefront-cart/internal/service/cart"
)

type cartHandlers struct {
	svc     *cartsvc.Service
	logger  *log.Logger
	cookies CookieConfig
}

func (h *cartHandlers) tokens(c *gin.Context) cartsvc.TokenStore {
	return &cookieTokens{c: c, cfg: h.cookies}
}

// lineRequest is the wire shape of one line input. merchandiseId selects the
// legacy shape; otherwise objectId selects the backend shape.
type lineRequest struct {
	MerchandiseID string              `json:"merchandiseId"`
	ObjectID      int64               `json:"objectId"`
	Quantity      int                 `json:"quantity"`
	LineID        string              `json:"lineId"`
	Backend       *domain.BackendMeta `json:"backend"`
}

func (r lineRequest) toInput() cartsvc.LineInput {
	var in cartsvc.LineInput
	if r.MerchandiseID != "" {
		in = cartsvc.MerchandiseLine(r.MerchandiseID, r.Quantity)
	} else {
		in = cartsvc.BackendLine(r.ObjectID, r.Quantity)
	}
	in.LineID = r.LineID
	in.Backend = r.Backend
	return in
}

type linesRequest struct {
	Lines []lineRequest `json:"lines"`
}

func (r linesRequest) toInputs() []cartsvc.LineInput {
	inputs := make([]cartsvc.LineInput, 0, len(r.Lines))
	for _, line := range r.Lines {
		inputs = append(inputs, line.toInput())
	}
	return inputs
}

func (h *cartHandlers) create(c *gin.Context) {
	cart, err := h.svc.CreateCart(c.Request.Context(), h.tokens(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

func (h *cartHandlers) get(c *gin.Context) {
	cart, err := h.svc.GetCart(c.Request.Context(), h.tokens(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if cart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) addLines(c *gin.Context) {
	var req linesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cart, err := h.svc.AddToCart(c.Request.Context(), h.tokens(c), req.toInputs())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) updateLines(c *gin.Context) {
	var req linesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cart, err := h.svc.UpdateCart(c.Request.Context(), h.tokens(c), req.toInputs())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) removeLines(c *gin.Context) {
	// Accepts bare line ids and structured line entries in the same body.
	var req struct {
		LineIDs []string      `json:"lineIds"`
		Lines   []lineRequest `json:"lines"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ids := req.LineIDs
	for _, line := range req.Lines {
		switch {
		case line.LineID != "":
			ids = append(ids, line.LineID)
		case line.MerchandiseID != "":
			ids = append(ids, line.MerchandiseID)
		}
	}
	cart, err := h.svc.RemoveFromCart(c.Request.Context(), h.tokens(c), ids)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) applyCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coupon code required"})
		return
	}
	cart, err := h.svc.ApplyCoupon(c.Request.Context(), h.tokens(c), req.Code)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) removeCoupon(c *gin.Context) {
	cart, err := h.svc.RemoveCoupon(c.Request.Context(), h.tokens(c), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCouponNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found"})
	case errors.Is(err, domain.ErrCouponRequirementsNotMet):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "coupon requirements not met"})
	default:
		h.logger.Printf("cart handler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
