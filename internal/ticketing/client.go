package ticketing

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/config"
	"github.com/spec-kit/voicedesk/internal/domain"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

// Client talks to a Jira Service Management instance. Catalog reads use the
// service desk API; updates to existing issues go through the core issue API
// because the service desk API has no update endpoint.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a ticketing client from platform credentials.
func NewClient(cfg config.JiraConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.Email+":"+cfg.APIToken)),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     logger,
	}
}

// ForSite returns a copy of the client targeting a tenant-specific site.
// Credentials and timeout carry over.
func (c *Client) ForSite(siteBaseURL string) *Client {
	if strings.TrimSpace(siteBaseURL) == "" {
		return c
	}
	clone := *c
	clone.baseURL = strings.TrimRight(siteBaseURL, "/")
	return &clone
}

type requestTypeList struct {
	Values []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"values"`
}

// ListRequestTypes fetches the request-type catalog for a service desk.
func (c *Client) ListRequestTypes(ctx context.Context, serviceDeskID string) ([]domain.RequestType, error) {
	var list requestTypeList
	path := fmt.Sprintf("/rest/servicedeskapi/servicedesk/%s/requesttype", serviceDeskID)
	if err := c.get(ctx, path, &list); err != nil {
		return nil, apperrors.NewUpstreamError("ticketing catalog", err)
	}
	types := make([]domain.RequestType, 0, len(list.Values))
	for _, v := range list.Values {
		types = append(types, domain.RequestType{ID: v.ID, Name: v.Name})
	}
	return types, nil
}

type fieldList struct {
	RequestTypeFields []struct {
		FieldID    string `json:"fieldId"`
		Name       string `json:"name"`
		Required   bool   `json:"required"`
		JiraSchema struct {
			Type string `json:"type"`
		} `json:"jiraSchema"`
	} `json:"requestTypeFields"`
}

// ListFields fetches the field specs of one request type.
func (c *Client) ListFields(ctx context.Context, serviceDeskID, requestTypeID string) ([]domain.FieldSpec, error) {
	var list fieldList
	path := fmt.Sprintf("/rest/servicedeskapi/servicedesk/%s/requesttype/%s/field", serviceDeskID, requestTypeID)
	if err := c.get(ctx, path, &list); err != nil {
		return nil, apperrors.NewUpstreamError("ticketing catalog", err)
	}
	specs := make([]domain.FieldSpec, 0, len(list.RequestTypeFields))
	for _, f := range list.RequestTypeFields {
		specs = append(specs, domain.FieldSpec{
			FieldID:     f.FieldID,
			DisplayName: f.Name,
			Required:    f.Required,
			Type:        fieldTypeFromSchema(f.JiraSchema.Type),
		})
	}
	return specs, nil
}

func fieldTypeFromSchema(schemaType string) domain.FieldType {
	switch schemaType {
	case "array":
		return domain.FieldTypeMultiValue
	case "number":
		return domain.FieldTypeNumber
	case "date", "datetime":
		return domain.FieldTypeDate
	case "option":
		return domain.FieldTypeSelect
	case "text":
		return domain.FieldTypeTextArea
	default:
		return domain.FieldTypeText
	}
}

type createRequestBody struct {
	ServiceDeskID      string               `json:"serviceDeskId"`
	RequestTypeID      string               `json:"requestTypeId"`
	RequestFieldValues domain.FieldValueMap `json:"requestFieldValues"`
}

type createRequestResponse struct {
	IssueKey string `json:"issueKey"`
}

// CreateRequest creates a service request and returns the new issue key.
func (c *Client) CreateRequest(ctx context.Context, serviceDeskID, requestTypeID string, fieldValues domain.FieldValueMap) (string, error) {
	body := createRequestBody{
		ServiceDeskID:      serviceDeskID,
		RequestTypeID:      requestTypeID,
		RequestFieldValues: fieldValues,
	}
	var created createRequestResponse
	if err := c.send(ctx, http.MethodPost, "/rest/servicedeskapi/request", body, &created); err != nil {
		return "", apperrors.NewTicketingError(err)
	}
	if created.IssueKey == "" {
		return "", apperrors.NewTicketingError(fmt.Errorf("create response carried no issue key"))
	}
	return created.IssueKey, nil
}

// UpdateRequest updates summary and description of an existing issue. Field
// granularity is intentionally narrower than create.
func (c *Client) UpdateRequest(ctx context.Context, issueKey, summary, description string) error {
	body := map[string]any{
		"fields": map[string]any{
			"summary":     summary,
			"description": description,
		},
	}
	path := fmt.Sprintf("/rest/api/3/issue/%s", issueKey)
	if err := c.send(ctx, http.MethodPut, path, body, nil); err != nil {
		return apperrors.NewTicketingError(err)
	}
	return nil
}

type organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateOrganization creates a customer organization in the tenant's site.
// Used during workspace provisioning, best effort.
func (c *Client) CreateOrganization(ctx context.Context, name string) (string, error) {
	var org organization
	if err := c.send(ctx, http.MethodPost, "/rest/servicedeskapi/organization", map[string]string{"name": name}, &org); err != nil {
		return "", apperrors.NewTicketingError(err)
	}
	return org.ID, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("ticketing call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
