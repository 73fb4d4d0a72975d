package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voicedesk/internal/api/dto"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/repository"
	"github.com/spec-kit/voicedesk/internal/service"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

// CompaniesHandler exposes tenant management endpoints.
type CompaniesHandler struct {
	companies *service.CompanyService
}

// NewCompaniesHandler constructs handler.
func NewCompaniesHandler(companies *service.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{companies: companies}
}

// Create handles POST /companies.
func (h *CompaniesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Domain == "" || req.ContactEmail == "" {
		return apperrors.NewValidationError("name, domain, contact_email required", nil)
	}

	company, err := h.companies.CreateCompany(c.UserContext(), service.CompanyCreateInput{
		Name:          req.Name,
		Domain:        req.Domain,
		Industry:      req.Industry,
		Size:          req.Size,
		ContactEmail:  req.ContactEmail,
		PhoneNumber:   req.PhoneNumber,
		WorkspaceName: req.WorkspaceName,
		AdminEmail:    req.AdminEmail,
		Timezone:      req.Timezone,
		SiteBaseURL:   req.SiteBaseURL,
		RequestTypes:  req.RequestTypes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCompanyResponse(company)})
}

// Get handles GET /companies/:id.
func (h *CompaniesHandler) Get(c *fiber.Ctx) error {
	company, err := h.companies.GetCompany(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCompanyResponse(company)})
}

// List handles GET /companies.
func (h *CompaniesHandler) List(c *fiber.Ctx) error {
	filter := repository.CompanyFilter{
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}
	if status := c.Query("status"); status != "" {
		parsed := domain.CompanyStatus(status)
		filter.Status = &parsed
	}
	if industry := c.Query("industry"); industry != "" {
		filter.Industry = &industry
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}

	companies, err := h.companies.ListCompanies(c.UserContext(), filter)
	if err != nil {
		return err
	}
	out := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		out = append(out, dto.NewCompanyResponse(&companies[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Update handles PATCH /companies/:id.
func (h *CompaniesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	company, err := h.companies.UpdateCompany(c.UserContext(), c.Params("id"), service.CompanyUpdateInput{
		Name:         req.Name,
		Industry:     req.Industry,
		Size:         req.Size,
		PhoneNumber:  req.PhoneNumber,
		Status:       req.Status,
		MaxTickets:   req.MaxTickets,
		RequestTypes: req.RequestTypes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCompanyResponse(company)})
}

// Delete handles DELETE /companies/:id.
func (h *CompaniesHandler) Delete(c *fiber.Ctx) error {
	if err := h.companies.DeleteCompany(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListVoicemails handles GET /companies/:id/voicemails.
func (h *CompaniesHandler) ListVoicemails(c *fiber.Ctx) error {
	records, err := h.companies.ListVoicemails(c.UserContext(), c.Params("id"),
		queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	out := make([]dto.VoicemailRecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, dto.VoicemailRecordResponse{
			ID:        record.ID,
			EventID:   record.EventID,
			IssueKey:  record.IssueKey,
			Summary:   record.Summary,
			Priority:  record.Priority,
			CreatedAt: record.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
