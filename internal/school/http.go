// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package school

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduseek/eduseek/internal/platform/middleware"
	requestutil "github.com/eduseek/eduseek/internal/platform/request"
	"github.com/eduseek/eduseek/internal/platform/respond"
	"github.com/eduseek/eduseek/internal/platform/sec"
	"github.com/eduseek/eduseek/internal/platform/validate"
	"github.com/eduseek/eduseek/pkg/pagination"
)

// Handler implements the school catalogue HTTP endpoints.
type Handler struct {
	schoolService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{schoolService: service}
}

// Routes returns a [chi.Router] configured with catalogue routes.
//
// GET endpoints are public (the gate's allow-list covers them); the write
// endpoints require an authenticated school_owner or admin.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public browsing
	router.Get("/", handler.list)
	router.Get("/{slug}", handler.get)

	// Owner-gated management
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleSchoolOwner, sec.RoleAdmin))
		r.Post("/", handler.create)
		r.Put("/{slug}", handler.update)
	})

	return router
}

// # Request Payloads

type schoolRequest struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// list handles GET / with optional q= and city= filters.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{
		Query: request.URL.Query().Get("q"),
		City:  request.URL.Query().Get("city"),
	}
	page := pagination.FromRequest(request)

	schools, meta, err := handler.schoolService.List(request.Context(), filter, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, schools, meta)
}

// get handles GET /{slug}.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	school, err := handler.schoolService.Get(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, school)
}

// create handles POST / for school owners.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	owner, err := requestutil.RequiredUsername(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input schoolRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := validateSchool(&input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	school, err := handler.schoolService.Create(request.Context(), owner, CreateInput{
		Name:        input.Name,
		City:        input.City,
		Address:     input.Address,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, school)
}

// update handles PUT /{slug}.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input schoolRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := validateSchool(&input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, _ := sec.ParseRole(claims.Role)
	school, err := handler.schoolService.Update(
		request.Context(),
		requestutil.Param(request, "slug"),
		claims.Username,
		role,
		UpdateInput{
			Name:        input.Name,
			City:        input.City,
			Address:     input.Address,
			Description: input.Description,
		},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, school)
}

// validateSchool applies the shared create/update validation rules.
func validateSchool(input *schoolRequest) error {
	v := &validate.Validator{}
	v.Required(FieldName, input.Name).
		MinLen(FieldName, input.Name, 3).
		MaxLen(FieldName, input.Name, 120).
		Required(FieldCity, input.City).
		Required(FieldAddress, input.Address).
		MaxLen(FieldDescription, input.Description, 2000)
	return v.Err()
}
