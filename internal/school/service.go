// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package school

import (
	"context"
	"fmt"

	"github.com/eduseek/eduseek/internal/platform/apperr"
	"github.com/eduseek/eduseek/internal/platform/sec"
	"github.com/eduseek/eduseek/pkg/pagination"
	"github.com/eduseek/eduseek/pkg/slug"
	"github.com/eduseek/eduseek/pkg/uuid"
)

// Service implements school catalogue use cases.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// List returns a filtered, paginated catalogue page.
func (service *Service) List(ctx context.Context, filter Filter, page pagination.Params) ([]School, pagination.Meta, error) {
	schools, total, err := service.repository.List(ctx, filter, page)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("school_service_list_failed: %w", err)
	}
	return schools, pagination.NewMeta(page.Page, page.Limit, total), nil
}

// Get resolves a school by its slug.
func (service *Service) Get(ctx context.Context, schoolSlug string) (*School, error) {
	return service.repository.FindBySlug(ctx, schoolSlug)
}

// CreateInput holds the data required to publish a new listing.
type CreateInput struct {
	Name        string
	City        string
	Address     string
	Description string
}

// Create publishes a new school listing owned by the calling principal.
//
// The slug is derived from the name; a duplicate slug surfaces as a conflict
// so the owner can pick a more specific name.
func (service *Service) Create(ctx context.Context, owner string, input CreateInput) (*School, error) {
	schoolSlug := slug.From(input.Name)
	if schoolSlug == "" {
		return nil, apperr.ValidationError("Name must contain at least one alphanumeric character")
	}

	if _, err := service.repository.FindBySlug(ctx, schoolSlug); err == nil {
		return nil, apperr.Conflict("A school with this name already exists")
	}

	school := &School{
		ID:            uuid.New(),
		Name:          input.Name,
		Slug:          schoolSlug,
		City:          input.City,
		Address:       input.Address,
		Description:   input.Description,
		OwnerUsername: owner,
	}

	if err := service.repository.Create(ctx, school); err != nil {
		return nil, fmt.Errorf("school_service_create_failed: %w", err)
	}

	return school, nil
}

// UpdateInput holds the mutable listing fields.
type UpdateInput struct {
	Name        string
	City        string
	Address     string
	Description string
}

// Update modifies an existing listing.
//
// Only the owning school_owner or an admin may update; the check runs after
// the listing is loaded so a non-owner cannot probe which slugs exist
// beyond what the public catalogue already reveals.
func (service *Service) Update(ctx context.Context, schoolSlug, caller string, callerRole sec.Role, input UpdateInput) (*School, error) {
	school, err := service.repository.FindBySlug(ctx, schoolSlug)
	if err != nil {
		return nil, err
	}

	if callerRole != sec.RoleAdmin && school.OwnerUsername != caller {
		return nil, apperr.Forbidden("Only the listing owner may update it")
	}

	school.Name = input.Name
	school.City = input.City
	school.Address = input.Address
	school.Description = input.Description

	if err := service.repository.Update(ctx, school); err != nil {
		return nil, fmt.Errorf("school_service_update_failed: %w", err)
	}

	return school, nil
}
