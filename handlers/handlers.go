package handlers

import (
	"net/http"
	"os"

	"storefront-service/internal/auth"
	"storefront-service/internal/cart"
	"storefront-service/internal/orders"
	"storefront-service/internal/products"
	"storefront-service/internal/shop"
	"storefront-service/internal/stores/kafka"
	"storefront-service/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	o        *orders.Conf
	p        products.Conf
	c        cart.Conf
	s        shop.Conf
	k        *kafka.Conf
	validate *validator.Validate
}

// NewHandler wires the domain packages into one handler set. k may be nil
// when event publishing is disabled.
func NewHandler(o *orders.Conf, p products.Conf, c cart.Conf, s shop.Conf, k *kafka.Conf) *Handler {
	return &Handler{
		o:        o,
		p:        p,
		c:        c,
		s:        s,
		k:        k,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, keys *auth.Keys, o *orders.Conf, p products.Conf,
	c cart.Conf, s shop.Conf, k *kafka.Conf) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(keys)
	if err != nil {
		panic(err)
	}

	h := NewHandler(o, p, c, s, k)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", healthCheck)

	v1 := r.Group(endpointPrefix)
	{
		// Catalog browsing is public.
		v1.GET("/products/list", h.ListProducts)
		v1.GET("/products/view/:id", h.GetProduct)

		authed := v1.Group("")
		authed.Use(m.Authentication())

		authed.POST("/cart/add-item", m.Authorize(h.AddToCart, auth.RoleUser))
		authed.GET("/cart/items", m.Authorize(h.GetActiveCartItems, auth.RoleUser))
		authed.POST("/cart/remove-item", m.Authorize(h.RemoveCartItem, auth.RoleUser))

		authed.POST("/order/preview", m.Authorize(h.PreviewOrder, auth.RoleUser))
		authed.POST("/order/create", m.Authorize(h.CreateOrder, auth.RoleUser))
		authed.POST("/order/cancel", m.Authorize(h.CancelOrder, auth.RoleUser))
		authed.GET("/order/list", m.Authorize(h.ListOrders, auth.RoleUser))
		authed.GET("/order/detail", m.Authorize(h.OrderDetail, auth.RoleUser))

		authed.GET("/admin/order/list", m.Authorize(h.AdminListOrders, auth.RoleAdmin))
		authed.GET("/admin/order/detail", m.Authorize(h.AdminOrderDetail, auth.RoleAdmin))
		authed.POST("/admin/order/audit", m.Authorize(h.AuditOrder, auth.RoleAdmin))
		authed.POST("/admin/order/complete-delivery", m.Authorize(h.CompleteDelivery, auth.RoleAdmin))
		authed.POST("/admin/order/verify", m.Authorize(h.VerifyPickup, auth.RoleAdmin))
		authed.POST("/admin/shop/config", m.Authorize(h.UpdateShopConfig, auth.RoleAdmin))
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
