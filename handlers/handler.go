package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/MustafaTarek77/Order-Management-System/internal/cart"
	"github.com/MustafaTarek77/Order-Management-System/internal/orders"
	"github.com/MustafaTarek77/Order-Management-System/internal/stores/kafka"
	"github.com/MustafaTarek77/Order-Management-System/internal/users"
	"github.com/MustafaTarek77/Order-Management-System/middleware"
	"github.com/MustafaTarek77/Order-Management-System/pkg/apperr"
	"github.com/MustafaTarek77/Order-Management-System/pkg/ctxmanage"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	cConf    *cart.Conf
	oConf    *orders.Conf
	uConf    *users.Conf
	k        *kafka.Conf
	validate *validator.Validate
}

func NewHandler(cConf *cart.Conf, oConf *orders.Conf, uConf *users.Conf, k *kafka.Conf) *Handler {
	return &Handler{
		cConf:    cConf,
		oConf:    oConf,
		uConf:    uConf,
		k:        k,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, cConf *cart.Conf, oConf *orders.Conf, uConf *users.Conf, k *kafka.Conf) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	h := NewHandler(cConf, oConf, uConf, k)
	//apply middleware to all the endpoints using r.Use
	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.POST("/cart/add", h.AddToCart)
		v1.GET("/cart/:userId", h.ViewCart)
		v1.PUT("/cart/update", h.UpdateCartItem)
		v1.DELETE("/cart/remove", h.RemoveFromCart)

		v1.POST("/orders", h.CreateOrder)
		v1.GET("/orders/:orderId", h.GetOrder)
		v1.PUT("/orders/:orderId/status", h.UpdateOrderStatus)
		v1.POST("/orders/:orderId/apply-coupon", h.ApplyCoupon)

		v1.GET("/users/:userId/orders", h.GetOrderHistory)
	}

	return r
}

func healthCheck(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	fmt.Println("healthCheck handler ", traceId)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFromError maps the error taxonomy to HTTP statuses so failures
// surface with the right class without the handler re-deriving the cause.
func statusFromError(err error) int {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case apperr.KindNotFound, apperr.KindEmptyCart:
		return http.StatusNotFound
	case apperr.KindInsufficientStock:
		return http.StatusConflict
	case apperr.KindInvalidCoupon, apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}

// respondError writes the mapped status and message for err.
func respondError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFromError(err), gin.H{"error": errorMessage(err)})
}
