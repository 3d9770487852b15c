// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

/*
Package school implements the school catalogue domain.

It is the representative downstream consumer of the authentication core:
browsing and search are public, while create/update operations require an
authenticated principal whose role and ownership are checked against the
listing.
*/
package school

import (
	"context"
	"time"

	"github.com/eduseek/eduseek/pkg/pagination"
)

// # Domain Entities

// School represents a listed school on the platform.
type School struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	City          string    `json:"city"`
	Address       string    `json:"address"`
	Description   string    `json:"description,omitempty"`
	OwnerUsername string    `json:"owner_username"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Filter narrows the catalogue listing.
type Filter struct {
	// Query matches against school name (case-insensitive substring).
	Query string
	// City filters by exact city name.
	City string
}

// # Data Access

// Repository defines the data access contract for the catalogue.
type Repository interface {
	// List returns a page of schools matching the filter plus the total count.
	List(ctx context.Context, filter Filter, page pagination.Params) ([]School, int, error)

	// FindBySlug returns the school with the given slug.
	FindBySlug(ctx context.Context, slug string) (*School, error)

	// Create persists a new school listing.
	Create(ctx context.Context, school *School) error

	// Update persists changes to mutable listing fields.
	Update(ctx context.Context, school *School) error
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldCity        = "city"
	FieldAddress     = "address"
	FieldDescription = "description"
)
