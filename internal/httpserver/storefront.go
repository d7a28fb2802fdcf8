package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	ordersvc "storefront/internal/service/order"
)

func (a *api) listProducts(c *gin.Context) {
	page, err := a.deps.Products.List(c.Request.Context(), c.Query("type"), pageParam(c))
	if err != nil {
		a.fail(c, err, gin.H{"type": c.Query("type")})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) productBySlug(c *gin.Context) {
	p, err := a.deps.Products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *api) getCart(c *gin.Context) {
	view, err := a.deps.Carts.Get(c.Request.Context(), customerFrom(c).ID)
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *api) addCartItem(c *gin.Context) {
	var req cartsvc.AddInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := a.deps.Carts.Add(c.Request.Context(), customerFrom(c).ID, req)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusOK, view)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// updateCartItem replaces the quantity; zero or less removes the line.
func (a *api) updateCartItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := a.deps.Carts.SetQuantity(c.Request.Context(), customerFrom(c).ID, c.Param("id"), req.Quantity)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *api) removeCartItem(c *gin.Context) {
	view, err := a.deps.Carts.Remove(c.Request.Context(), customerFrom(c).ID, c.Param("id"))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *api) checkout(c *gin.Context) {
	var req ordersvc.PlaceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	placement, err := a.deps.Orders.PlaceOrder(c.Request.Context(), *customerFrom(c), req)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, placement)
}

type buyNowRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	ordersvc.PlaceInput
}

func (a *api) buyNow(c *gin.Context) {
	var req buyNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	placement, err := a.deps.Orders.BuyNow(c.Request.Context(), *customerFrom(c), req.ProductID, req.Quantity, req.PlaceInput)
	if err != nil {
		a.fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, placement)
}

func (a *api) orderHistory(c *gin.Context) {
	a.history(c, domain.OrderBucket(c.DefaultQuery("bucket", string(domain.BucketAll))))
}

// orderByRef serves both /orders/<bucket> and /orders/<order number>.
// Bucket names are lowercase words and never collide with order numbers.
func (a *api) orderByRef(c *gin.Context) {
	ref := c.Param("ref")
	bucket := domain.OrderBucket(ref)
	if _, ok := bucket.Statuses(); ok {
		a.history(c, bucket)
		return
	}
	a.trackOwnOrder(c)
}

func (a *api) history(c *gin.Context, bucket domain.OrderBucket) {
	h, err := a.deps.Orders.CustomerHistory(c.Request.Context(), customerFrom(c).ID, bucket, pageParam(c))
	if err != nil {
		a.fail(c, err, gin.H{"bucket": bucket})
		return
	}
	c.JSON(http.StatusOK, h)
}

func (a *api) trackOwnOrder(c *gin.Context) {
	tracked, err := a.deps.Orders.TrackForCustomer(c.Request.Context(), customerFrom(c).ID, c.Param("ref"))
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, tracked)
}

// publicTrack needs both the order number and the phone used at checkout.
// Any mismatch looks the same as an unknown order.
func (a *api) publicTrack(c *gin.Context) {
	number, phone := c.Query("number"), c.Query("phone")
	tracked, err := a.deps.Orders.PublicTrack(c.Request.Context(), number, phone)
	if err != nil {
		a.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, tracked)
}
