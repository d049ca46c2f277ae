package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/port/http/handler"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/port/http/middleware"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Cart       *handler.CartHandler
	Orders     *handler.OrderHandler
}

// NewRouter wires all storefront routes under /api. Public catalog reads are
// open; cart, orders and profile need a bearer token; admin mutations need
// the admin role on top.
func NewRouter(h Handlers, jwtSecret string, log logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))

	authn := middleware.JWTAuth(jwtSecret, log)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/forgot-password", h.Auth.ForgotPassword)
			auth.Put("/reset-password/{token}", h.Auth.ResetPassword)

			auth.Group(func(priv chi.Router) {
				priv.Use(authn)
				priv.Get("/me", h.Auth.Me)
				priv.Put("/profile", h.Auth.UpdateProfile)
				priv.Put("/change-password", h.Auth.ChangePassword)
				priv.Post("/addresses", h.Auth.AddAddress)
				priv.Put("/addresses/{addressID}", h.Auth.UpdateAddress)
				priv.Delete("/addresses/{addressID}", h.Auth.DeleteAddress)
			})
		})

		api.Route("/products", func(products chi.Router) {
			products.Get("/", h.Products.List)
			products.Get("/featured", h.Products.Featured)
			products.Get("/slug/{slug}", h.Products.GetBySlug)
			products.Get("/{id}", h.Products.Get)
			products.Get("/{id}/related", h.Products.Related)

			products.Group(func(priv chi.Router) {
				priv.Use(authn)
				priv.Post("/{id}/reviews", h.Products.AddReview)
				priv.Put("/{id}/reviews/{reviewID}", h.Products.UpdateReview)
				priv.Delete("/{id}/reviews/{reviewID}", h.Products.DeleteReview)
			})

			products.Group(func(admin chi.Router) {
				admin.Use(authn, middleware.AdminOnly)
				admin.Post("/", h.Products.Create)
				admin.Put("/{id}", h.Products.Update)
				admin.Delete("/{id}", h.Products.Delete)
				admin.Delete("/{id}/images", h.Products.DeleteImage)
				admin.Patch("/{id}/stock", h.Products.SetStock)
			})
		})

		api.Route("/categories", func(categories chi.Router) {
			categories.Get("/", h.Categories.List)
			categories.Get("/parents", h.Categories.Parents)
			categories.Get("/tree", h.Categories.Tree)
			categories.Get("/slug/{slug}", h.Categories.GetBySlug)
			categories.Get("/{id}", h.Categories.Get)
			categories.Get("/{id}/products", h.Categories.Products)

			categories.Group(func(admin chi.Router) {
				admin.Use(authn, middleware.AdminOnly)
				admin.Post("/", h.Categories.Create)
				admin.Put("/{id}", h.Categories.Update)
				admin.Delete("/{id}", h.Categories.Delete)
			})
		})

		api.Route("/cart", func(cart chi.Router) {
			cart.Use(authn)
			cart.Get("/", h.Cart.Get)
			cart.Post("/items", h.Cart.AddItem)
			cart.Put("/items/{itemID}", h.Cart.UpdateItem)
			cart.Delete("/items/{itemID}", h.Cart.RemoveItem)
			cart.Delete("/", h.Cart.Clear)
			cart.Post("/sync", h.Cart.Sync)
		})

		api.Route("/orders", func(orders chi.Router) {
			orders.Use(authn)
			orders.Post("/", h.Orders.Create)
			orders.Get("/", h.Orders.MyOrders)
			orders.Post("/{id}/verify-payment", h.Orders.VerifyPayment)
			orders.Put("/{id}/cancel", h.Orders.Cancel)

			orders.Group(func(admin chi.Router) {
				admin.Use(middleware.AdminOnly)
				admin.Get("/admin/all", h.Orders.AdminList)
				admin.Get("/admin/stats", h.Orders.Stats)
				admin.Put("/{id}/status", h.Orders.UpdateStatus)
			})

			orders.Get("/{id}", h.Orders.Get)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
