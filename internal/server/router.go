package server

import (
	"context"
	"net/http"

	"comedor/internal/handlers"
	applog "comedor/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/login", handlers.Login)
	mux.HandleFunc("/signup", handlers.Signup)
	mux.HandleFunc("/logout", handlers.Logout)
	mux.Handle("/app/api/recipes", handlers.RequireAuthentication(http.HandlerFunc(handlers.RecipeResource)))
	mux.Handle("/app/api/recipes/", handlers.RequireAuthentication(http.HandlerFunc(handlers.RecipeResource)))
	mux.Handle("/app/api/projections", handlers.RequireAuthentication(http.HandlerFunc(handlers.ProjectionResource)))
	mux.Handle("/app/api/projections/", handlers.RequireAuthentication(http.HandlerFunc(handlers.ProjectionResource)))
	mux.Handle("/app/api/ingredients", handlers.RequireAuthentication(http.HandlerFunc(handlers.IngredientResource)))
	mux.Handle("/app/api/ingredients/", handlers.RequireAuthentication(http.HandlerFunc(handlers.IngredientResource)))
	mux.Handle("/app/api/providers", handlers.RequireAuthentication(http.HandlerFunc(handlers.ProviderResource)))
	mux.Handle("/app/api/providers/", handlers.RequireAuthentication(http.HandlerFunc(handlers.ProviderResource)))
	mux.Handle("/app/api/trash/", handlers.RequireAuthentication(http.HandlerFunc(handlers.TrashResource)))
	applog.Debug(context.Background(), "routes registered", "protectedPrefix", "/app/api")
	return mux
}
