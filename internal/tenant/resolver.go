package tenant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// ErrCompanyNotResolved means no active company matched the request.
var ErrCompanyNotResolved = errors.New("company could not be resolved")

// Request carries the identification hints of one public request.
type Request struct {
	Host        string // Host header, may include a port
	CompanyID   string // company_id query parameter
	CompanySlug string // company_slug query parameter
}

// Resolver maps public, unauthenticated requests to a company. Resolution
// order is host domain, then company_id, then company_slug. Inactive
// companies never resolve.
type Resolver struct {
	companies data.CompanyRepositoryInterface
}

// NewResolver creates a new tenant resolver
func NewResolver(companies data.CompanyRepositoryInterface) *Resolver {
	return &Resolver{companies: companies}
}

// Resolve returns the active company for the request, or
// ErrCompanyNotResolved when no hint matches one.
func (r *Resolver) Resolve(ctx context.Context, db orm.DB, req Request) (*models.Company, error) {
	if domain := normalizeHost(req.Host); domain != "" {
		company, err := r.companies.GetActiveByDomain(ctx, db, domain)
		if err == nil {
			return company, nil
		}
		if !errors.Is(err, data.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve company by domain: %w", err)
		}
	}

	if req.CompanyID != "" {
		id, err := uuid.Parse(req.CompanyID)
		if err != nil {
			return nil, ErrCompanyNotResolved
		}
		company, err := r.companies.GetActiveByID(ctx, db, id)
		if err == nil {
			return company, nil
		}
		if !errors.Is(err, data.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve company by id: %w", err)
		}
		return nil, ErrCompanyNotResolved
	}

	if req.CompanySlug != "" {
		company, err := r.companies.GetActiveBySlug(ctx, db, req.CompanySlug)
		if err == nil {
			return company, nil
		}
		if !errors.Is(err, data.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve company by slug: %w", err)
		}
	}

	return nil, ErrCompanyNotResolved
}

// normalizeHost strips the port and lowercases the host so stored domains
// match regardless of how the widget addressed the server.
func normalizeHost(host string) string {
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSpace(host))
}
