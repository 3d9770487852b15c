// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package school_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduseek/eduseek/internal/platform/apperr"
	"github.com/eduseek/eduseek/internal/platform/sec"
	"github.com/eduseek/eduseek/internal/school"
	"github.com/eduseek/eduseek/pkg/pagination"
)

// # Test Doubles

// fakeRepository is an in-memory Repository keyed by slug.
type fakeRepository struct {
	bySlug map[string]*school.School
}

func newFakeRepository(schools ...*school.School) *fakeRepository {
	f := &fakeRepository{bySlug: map[string]*school.School{}}
	for _, s := range schools {
		f.bySlug[s.Slug] = s
	}
	return f
}

func (f *fakeRepository) List(_ context.Context, filter school.Filter, page pagination.Params) ([]school.School, int, error) {
	matched := make([]school.School, 0, len(f.bySlug))
	for _, s := range f.bySlug {
		if filter.City != "" && s.City != filter.City {
			continue
		}
		matched = append(matched, *s)
	}
	return matched, len(matched), nil
}

func (f *fakeRepository) FindBySlug(_ context.Context, slug string) (*school.School, error) {
	if s, ok := f.bySlug[slug]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, apperr.NotFound("School")
}

func (f *fakeRepository) Create(_ context.Context, s *school.School) error {
	f.bySlug[s.Slug] = s
	return nil
}

func (f *fakeRepository) Update(_ context.Context, s *school.School) error {
	f.bySlug[s.Slug] = s
	return nil
}

// # Create Tests

/*
TestService_Create verifies slug derivation and duplicate detection.
*/
func TestService_Create(t *testing.T) {
	repository := newFakeRepository()
	service := school.NewService(repository)

	created, err := service.Create(context.Background(), "owner1", school.CreateInput{
		Name:    "Greenfield Academy",
		City:    "Hanoi",
		Address: "12 Oak Street",
	})
	require.NoError(t, err)

	assert.Equal(t, "greenfield-academy", created.Slug)
	assert.Equal(t, "owner1", created.OwnerUsername)
	assert.NotEmpty(t, created.ID)

	// A second listing with the same derived slug conflicts.
	_, err = service.Create(context.Background(), "owner2", school.CreateInput{
		Name:    "Greenfield Academy",
		City:    "Saigon",
		Address: "3 Elm Road",
	})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 409, ae.HTTPStatus)
}

/*
TestService_Create_UnsluggableName verifies rejection of names that produce
an empty slug.
*/
func TestService_Create_UnsluggableName(t *testing.T) {
	service := school.NewService(newFakeRepository())

	_, err := service.Create(context.Background(), "owner1", school.CreateInput{
		Name:    "!!!",
		City:    "Hanoi",
		Address: "12 Oak Street",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 400, ae.HTTPStatus)
}

// # Update Tests

/*
TestService_Update verifies the ownership rule: the owner and admins may
update, everyone else is forbidden.
*/
func TestService_Update(t *testing.T) {
	existing := &school.School{
		ID:            "school-1",
		Name:          "Greenfield Academy",
		Slug:          "greenfield-academy",
		City:          "Hanoi",
		Address:       "12 Oak Street",
		OwnerUsername: "owner1",
	}

	input := school.UpdateInput{
		Name:    "Greenfield Academy",
		City:    "Hanoi",
		Address: "14 Oak Street",
	}

	tests := []struct {
		name       string
		caller     string
		role       sec.Role
		wantStatus int // 0 means success
	}{
		{"owner_may_update", "owner1", sec.RoleSchoolOwner, 0},
		{"admin_may_update", "root", sec.RoleAdmin, 0},
		{"other_owner_forbidden", "owner2", sec.RoleSchoolOwner, 403},
		{"parent_forbidden", "parent1", sec.RoleParent, 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := school.NewService(newFakeRepository(existing))

			updated, err := service.Update(context.Background(), "greenfield-academy", tt.caller, tt.role, input)

			if tt.wantStatus == 0 {
				require.NoError(t, err)
				assert.Equal(t, "14 Oak Street", updated.Address)
			} else {
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, tt.wantStatus, ae.HTTPStatus)
			}
		})
	}
}

/*
TestService_Update_UnknownSlug verifies the not-found path.
*/
func TestService_Update_UnknownSlug(t *testing.T) {
	service := school.NewService(newFakeRepository())

	_, err := service.Update(context.Background(), "nowhere", "owner1", sec.RoleSchoolOwner, school.UpdateInput{})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 404, ae.HTTPStatus)
}

// # List Tests

/*
TestService_List verifies pagination metadata assembly.
*/
func TestService_List(t *testing.T) {
	service := school.NewService(newFakeRepository(
		&school.School{ID: "1", Slug: "a", City: "Hanoi"},
		&school.School{ID: "2", Slug: "b", City: "Hanoi"},
		&school.School{ID: "3", Slug: "c", City: "Saigon"},
	))

	schools, meta, err := service.List(context.Background(), school.Filter{City: "Hanoi"}, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, schools, 2)
	assert.Equal(t, 2, meta.Total)
	assert.Equal(t, 1, meta.Page)
}
