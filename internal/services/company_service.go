package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// CompanyService handles business logic for companies. All operations are
// super-admin only; handlers enforce that before calling in.
type CompanyService struct {
	db        orm.DB
	tx        data.TxRunner
	companies data.CompanyRepositoryInterface
	users     data.UserRepositoryInterface
	sink      activity.Sink
}

// NewCompanyService creates a new company service
func NewCompanyService(
	db orm.DB,
	tx data.TxRunner,
	companies data.CompanyRepositoryInterface,
	users data.UserRepositoryInterface,
	sink activity.Sink,
) *CompanyService {
	return &CompanyService{
		db:        db,
		tx:        tx,
		companies: companies,
		users:     users,
		sink:      sink,
	}
}

// CreateCompanyInput carries the fields for creating a company together
// with its first admin account.
type CreateCompanyInput struct {
	Name     string                 `json:"name" binding:"required"`
	Slug     string                 `json:"slug"`
	Domain   *string                `json:"domain"`
	IsActive *bool                  `json:"is_active"`
	Settings map[string]interface{} `json:"settings"`

	AdminName     string `json:"admin_name" binding:"required"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"required,min=8"`
}

// UpdateCompanyInput carries the updatable company fields. Nil pointers
// leave the current value untouched.
type UpdateCompanyInput struct {
	Name     *string                `json:"name"`
	Slug     *string                `json:"slug"`
	Domain   *string                `json:"domain"`
	IsActive *bool                  `json:"is_active"`
	Settings map[string]interface{} `json:"settings"`
}

// List returns companies with user counts, filtered and paginated
func (s *CompanyService) List(ctx context.Context, q data.CompanyQuery) ([]*models.Company, int, error) {
	return s.companies.List(ctx, s.db, q)
}

// Get returns one company with its aggregate counts
func (s *CompanyService) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.companies.LoadCounts(ctx, s.db, company); err != nil {
		return nil, err
	}
	return company, nil
}

// Create provisions a company together with its first company admin in one
// transaction. A company is never created without an admin able to manage it.
func (s *CompanyService) Create(ctx context.Context, actor *auth.Principal, in CreateCompanyInput) (*models.Company, error) {
	company := &models.Company{
		Name:     in.Name,
		Slug:     in.Slug,
		Domain:   in.Domain,
		IsActive: true,
		Settings: in.Settings,
	}
	if in.IsActive != nil {
		company.IsActive = *in.IsActive
	}
	if company.Slug == "" {
		company.Slug = models.Slugify(company.Name)
	}

	admin := &models.User{
		Name:     in.AdminName,
		Email:    in.AdminEmail,
		Password: in.AdminPassword,
		IsAdmin:  true,
	}

	err := s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.companies.Insert(ctx, db, company); err != nil {
			if errors.Is(err, data.ErrDuplicateRecord) {
				return models.NewConflictError("a company with this slug or domain already exists")
			}
			return err
		}

		admin.CompanyID = &company.ID
		if err := s.users.Insert(ctx, db, admin); err != nil {
			if errors.Is(err, data.ErrDuplicateRecord) {
				return models.NewConflictError("a user with this email already exists")
			}
			return err
		}

		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionCreate,
			EntityType: "company",
			EntityID:   &company.ID,
			Details: map[string]interface{}{
				"name":        company.Name,
				"slug":        company.Slug,
				"admin_email": admin.Email,
			},
			CompanyID: &company.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	admin.PasswordHash = ""
	company.Users = []*models.User{admin}
	return company, nil
}

// Update modifies a company's fields
func (s *CompanyService) Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in UpdateCompanyInput) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		company.Name = *in.Name
	}
	if in.Slug != nil {
		if *in.Slug == "" {
			return nil, models.NewValidationError("slug cannot be empty")
		}
		company.Slug = *in.Slug
	}
	if in.Domain != nil {
		company.Domain = in.Domain
	}
	if in.IsActive != nil {
		company.IsActive = *in.IsActive
	}
	if in.Settings != nil {
		company.Settings = in.Settings
	}

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.companies.Update(ctx, db, company); err != nil {
			if errors.Is(err, data.ErrDuplicateRecord) {
				return models.NewConflictError("a company with this slug or domain already exists")
			}
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionUpdate,
			EntityType: "company",
			EntityID:   &company.ID,
			Details:    map[string]interface{}{"name": company.Name},
			CompanyID:  &company.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// ToggleActive flips a company's active flag. Deactivating a company takes
// its public surface and all of its users' logins offline at once.
func (s *CompanyService) ToggleActive(ctx context.Context, actor *auth.Principal, id uuid.UUID) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	company.IsActive = !company.IsActive

	err = s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.companies.Update(ctx, db, company); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionToggle,
			EntityType: "company",
			EntityID:   &company.ID,
			Details:    map[string]interface{}{"is_active": company.IsActive},
			CompanyID:  &company.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// Delete removes a company. A company that still has users cannot be
// deleted; deactivate it or remove the users first.
func (s *CompanyService) Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID) error {
	company, err := s.companies.GetByID(ctx, s.db, id)
	if err != nil {
		return err
	}

	userCount, err := s.companies.CountUsers(ctx, s.db, id)
	if err != nil {
		return err
	}
	if userCount > 0 {
		return models.NewConflictError(fmt.Sprintf("company still has %d user(s)", userCount))
	}

	return s.tx.RunInTransaction(ctx, func(db orm.DB) error {
		if err := s.companies.Delete(ctx, db, id); err != nil {
			return err
		}
		return s.sink.Record(ctx, db, activity.Entry{
			UserID:     actor.UserID,
			Action:     models.ActionDelete,
			EntityType: "company",
			EntityID:   &id,
			Details:    map[string]interface{}{"name": company.Name},
			CompanyID:  &id,
		})
	})
}
