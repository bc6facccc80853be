package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/tenant"
)

// Context keys set by the tenant middleware
const (
	TenantCompanyIDKey = "tenant_company_id"
	PublicCompanyKey   = "public_company"
)

// TenantScope pins every authenticated resource request to one company.
// Members and company admins always act on their own company; super admins
// pick one with the company_id query parameter.
func TenantScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "User not authenticated",
			})
			return
		}

		if principal.Role == auth.RoleSuperAdmin {
			raw := c.Query("company_id")
			if raw == "" {
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
					"message": "company_id query parameter is required for super admins",
				})
				return
			}
			companyID, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
					"message": "company_id must be a valid UUID",
				})
				return
			}
			c.Set(TenantCompanyIDKey, companyID)
			c.Next()
			return
		}

		c.Set(TenantCompanyIDKey, *principal.CompanyID)
		c.Next()
	}
}

// TenantCompanyID returns the company the request is scoped to. It is only
// valid after TenantScope has run.
func TenantCompanyID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(TenantCompanyIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// IdentifyCompany resolves the company for public, unauthenticated routes
// from the request's host, company_id or company_slug. Unresolvable or
// inactive companies get a 404.
func IdentifyCompany(resolver *tenant.Resolver, db orm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		company, err := resolver.Resolve(c.Request.Context(), db, tenant.Request{
			Host:        c.Request.Host,
			CompanyID:   c.Query("company_id"),
			CompanySlug: c.Query("company_slug"),
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"message": "Company not found",
			})
			return
		}

		c.Set(PublicCompanyKey, company)
		c.Next()
	}
}

// PublicCompanyFrom returns the company resolved by IdentifyCompany.
func PublicCompanyFrom(c *gin.Context) *models.Company {
	value, exists := c.Get(PublicCompanyKey)
	if !exists {
		return nil
	}
	company, ok := value.(*models.Company)
	if !ok {
		return nil
	}
	return company
}
