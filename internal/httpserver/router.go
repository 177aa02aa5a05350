package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_rest/internal/middleware/csrf"
	pkgdb "github.com/Skotchmaster/store_rest/pkg/db"
	"github.com/Skotchmaster/store_rest/pkg/logging"
	authmw "github.com/Skotchmaster/store_rest/pkg/middleware/auth"
	"github.com/Skotchmaster/store_rest/pkg/middleware/metrics"
	"github.com/Skotchmaster/store_rest/pkg/middleware/ratelimit"
)

type Deps struct {
	Users   *UserHTTP
	Catalog *CatalogHTTP
	Orders  *OrderHTTP
	Items   *OrderItemHTTP

	JWTSecret  []byte
	Refresher  authmw.Refresher
	UserLookup UserLookup

	DB              pkgdb.Pinger
	Metrics         *metrics.ServerMetrics
	RegisterLimiter *ratelimit.Limiter
	SecureCookies   bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := pkgdb.Ready(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.Refresher)

	v1 := e.Group("/api/v1",
		authMW.Authenticate(),
		csrf.Middleware(csrf.Config{
			Secure: d.SecureCookies,
			// bearer and anonymous requests carry no ambient credentials
			Skipper: func(c echo.Context) bool { return !authmw.ViaCookie(c) },
		}),
		PrincipalLoader(d.UserLookup),
	)

	if d.RegisterLimiter != nil {
		v1.POST("/register", d.Users.Register, d.RegisterLimiter.Middleware)
	} else {
		v1.POST("/register", d.Users.Register)
	}

	users := v1.Group("/users")
	users.GET("", d.Users.ListUsers)
	users.GET("/:id", d.Users.GetUser)
	users.PUT("/:id", d.Users.UpdateUser)
	users.DELETE("/:id", d.Users.DeleteUser)
	users.GET("/:id/orders", d.Users.UserOrders)

	products := v1.Group("/products")
	products.GET("", d.Catalog.GetProducts)
	products.POST("", d.Catalog.CreateProduct)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/high_orders", d.Catalog.HighOrders)
	products.GET("/:id", d.Catalog.GetProduct)
	products.PUT("/:id", d.Catalog.UpdateProduct)
	products.DELETE("/:id", d.Catalog.DeleteProduct)

	orders := v1.Group("/orders")
	orders.GET("", d.Orders.GetOrders)
	orders.POST("", d.Orders.CreateOrder)
	orders.GET("/:id", d.Orders.GetOrder)
	orders.PUT("/:id", d.Orders.UpdateOrder)
	orders.DELETE("/:id", d.Orders.DeleteOrder)

	items := v1.Group("/order_items")
	items.GET("", d.Items.GetItems)
	items.POST("", d.Items.CreateItem)
	items.GET("/:id", d.Items.GetItem)
	items.PUT("/:id", d.Items.UpdateItem)
	items.DELETE("/:id", d.Items.DeleteItem)
}
