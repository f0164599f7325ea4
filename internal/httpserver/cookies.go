package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Browsers truncate or reject cookies above 4KiB; a snapshot that large
// cannot be persisted and the request proceeds without durability.
const maxCookieSize = 4096

// CookieConfig names the two cart cookies and how long they live.
type CookieConfig struct {
	CartName string
	IDName   string
	MaxAge   int
	Secure   bool
}

// cookieTokens adapts one request's cookie pair to the cart service's token
// store. The cart id cookie is readable by storefront scripts; the state
// cookie is http-only.
type cookieTokens struct {
	c   *gin.Context
	cfg CookieConfig
}

func (t *cookieTokens) Read(context.Context) (cartID, state string) {
	cartID, _ = t.c.Cookie(t.cfg.IDName)
	state, _ = t.c.Cookie(t.cfg.CartName)
	return cartID, state
}

func (t *cookieTokens) Write(_ context.Context, cartID, state string) error {
	if len(state) > maxCookieSize {
		return fmt.Errorf("cart state of %d bytes exceeds cookie limit", len(state))
	}
	t.c.SetSameSite(http.SameSiteLaxMode)
	t.c.SetCookie(t.cfg.IDName, cartID, t.cfg.MaxAge, "/", "", t.cfg.Secure, false)
	t.c.SetCookie(t.cfg.CartName, state, t.cfg.MaxAge, "/", "", t.cfg.Secure, true)
	return nil
}
