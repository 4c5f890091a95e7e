package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/mirabelledev/inkwell/internal/blogservice"
	"github.com/mirabelledev/inkwell/internal/common"
	"github.com/mirabelledev/inkwell/internal/mailservice"
	"github.com/mirabelledev/inkwell/internal/userservice"
)

// validationFlash flattens a validation error into a single user-facing
// notice, fields in stable order.
func validationFlash(errs map[string]string) string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(errs))
	for _, field := range fields {
		parts = append(parts, field+" "+errs[field])
	}

	return "Please check the form: " + strings.Join(parts, "; ")
}

func (app *application) homeHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.blogService.GetPosts(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	data := app.newTemplateData(w, r)
	data.Posts = posts

	app.render(w, r, http.StatusOK, "home.html", data)
}

func (app *application) registerFormHandler(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "register.html", app.newTemplateData(w, r))
}

func (app *application) registerSubmitHandler(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	session, err := app.userService.Register(
		r.Context(),
		r.PostForm.Get("name"),
		r.PostForm.Get("email"),
		r.PostForm.Get("password"),
		r.PostForm.Get("confirm_password"),
	)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.flashAndRedirect(w, r, "Account already exists! Log in instead.", "/login")
		case errors.Is(err, userservice.ErrPasswordMismatch):
			app.flashAndRedirect(w, r, "Password does not match! Make sure you confirm password before submitting.", "/register")
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.flashAndRedirect(w, r, validationFlash(validationErr.Errors), "/register")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// registration leaves the caller logged in as the new user
	if err := app.setSessionCookie(w, session); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, "/")
}

func (app *application) loginFormHandler(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "login.html", app.newTemplateData(w, r))
}

func (app *application) loginSubmitHandler(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	session, err := app.userService.Login(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("password"))
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrNotFound):
			app.flashAndRedirect(w, r, "Email does not exist! Try again", "/login")
		case errors.Is(err, userservice.ErrAuthenticationFailure):
			app.flashAndRedirect(w, r, "Password incorrect! Please try again.", "/login")
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.flashAndRedirect(w, r, validationFlash(validationErr.Errors), "/login")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if err := app.setSessionCookie(w, session); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, "/")
}

// logoutHandler terminates the session unconditionally. It succeeds even
// when there is no active session.
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	token, err := app.readSessionToken(r)
	if err == nil && token != "" {
		err = app.userService.Logout(r.Context(), token)
		if err != nil && !errors.As(err, &common.ValidationError{}) {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	app.clearSessionCookie(w)
	app.redirect(w, r, "/")
}

func (app *application) showPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	post, err := app.blogService.GetPost(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	data := app.newTemplateData(w, r)
	data.Post = post

	app.render(w, r, http.StatusOK, "post.html", data)
}

func (app *application) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	_, err = app.blogService.AddComment(r.Context(), id, r.PostForm.Get("text"), user)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrPostForeignKey):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.setFlash(w, validationFlash(validationErr.Errors))
			app.redirect(w, r, "/post/"+strconv.Itoa(id))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.redirect(w, r, "/")
}

func (app *application) newPostFormHandler(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "make-post.html", app.newTemplateData(w, r))
}

func postFieldsFromForm(r *http.Request) *blogservice.PostFields {
	return &blogservice.PostFields{
		Title:    r.PostForm.Get("title"),
		Subtitle: r.PostForm.Get("subtitle"),
		Body:     r.PostForm.Get("body"),
		ImgURL:   r.PostForm.Get("img_url"),
	}
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	_, err := app.blogService.CreatePost(r.Context(), postFieldsFromForm(r), user)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrDuplicateTitle):
			app.flashAndRedirect(w, r, "A post with that title already exists.", "/new-post")
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.flashAndRedirect(w, r, validationFlash(validationErr.Errors), "/new-post")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.redirect(w, r, "/")
}

func (app *application) editPostFormHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	post, err := app.blogService.GetPost(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	data := app.newTemplateData(w, r)
	data.Post = post
	data.IsEdit = true

	app.render(w, r, http.StatusOK, "make-post.html", data)
}

func (app *application) editPostSubmitHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	// the editor becomes the post's author
	user := app.getUserContext(r)

	err = app.blogService.UpdatePost(r.Context(), id, postFieldsFromForm(r), user)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, blogservice.ErrDuplicateTitle):
			app.flashAndRedirect(w, r, "A post with that title already exists.", "/edit-post/"+strconv.Itoa(id))
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.flashAndRedirect(w, r, validationFlash(validationErr.Errors), "/edit-post/"+strconv.Itoa(id))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.redirect(w, r, "/post/"+strconv.Itoa(id))
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.blogService.DeletePost(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.redirect(w, r, "/")
}

func (app *application) aboutHandler(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "about.html", app.newTemplateData(w, r))
}

func (app *application) contactFormHandler(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "contact.html", app.newTemplateData(w, r))
}

// contactSubmitHandler publishes the visitor's message to the broker; the
// mail service picks it up and emails the site owner.
func (app *application) contactSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	msg := mailservice.ContactMessage{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Message: r.PostForm.Get("message"),
	}

	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		app.flashAndRedirect(w, r, "Please fill in your name, email, and message.", "/contact")
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.producer.Publish(r.Context(), payload, common.ContactSubmittedKey, common.ContactExchange)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.flashAndRedirect(w, r, "Message sent successfully!", "/contact")
}
