package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/", app.homeHandler)
	router.HandlerFunc(http.MethodGet, "/health", app.healthCheckHandler)

	// authentication
	router.HandlerFunc(http.MethodGet, "/register", app.registerFormHandler)
	router.HandlerFunc(http.MethodPost, "/register", app.rateLimit(app.registerSubmitHandler))
	router.HandlerFunc(http.MethodGet, "/login", app.loginFormHandler)
	router.HandlerFunc(http.MethodPost, "/login", app.rateLimit(app.loginSubmitHandler))
	router.HandlerFunc(http.MethodGet, "/logout", app.logoutHandler)

	// posts and comments
	router.HandlerFunc(http.MethodGet, "/post/:id", app.showPostHandler)
	router.HandlerFunc(http.MethodPost, "/post/:id", app.requireAuthUser(app.addCommentHandler))
	router.HandlerFunc(http.MethodGet, "/new-post", app.requireAdmin(app.newPostFormHandler))
	router.HandlerFunc(http.MethodPost, "/new-post", app.requireAdmin(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/edit-post/:id", app.requireAdmin(app.editPostFormHandler))
	router.HandlerFunc(http.MethodPost, "/edit-post/:id", app.requireAdmin(app.editPostSubmitHandler))
	router.HandlerFunc(http.MethodGet, "/delete/:id", app.requireAdmin(app.deletePostHandler))

	// static pages
	router.HandlerFunc(http.MethodGet, "/about", app.aboutHandler)
	router.HandlerFunc(http.MethodGet, "/contact", app.contactFormHandler)
	router.HandlerFunc(http.MethodPost, "/contact", app.contactSubmitHandler)

	return app.recoverPanic(app.logRequest(app.authenticate(router)))
}
