package dataverse

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/logging"
)

const (
	apiPath = "/api/data/v9.2"

	formattedValueSuffix = "@OData.Community.Display.V1.FormattedValue"
	lookupLogicalSuffix  = "@Microsoft.Dynamics.CRM.lookuplogicalname"
	moreRecordsKey       = "@Microsoft.Dynamics.CRM.morerecords"
)

// ClientConfig configures the Web API client.
type ClientConfig struct {
	// BaseURL is the organization URL, e.g. https://org.crm4.dynamics.com.
	BaseURL string

	// TenantID, ClientID and ClientSecret configure the server-to-server
	// client-credentials grant against Microsoft Entra ID.
	TenantID     string
	ClientID     string
	ClientSecret string

	// HTTPClient overrides the OAuth-wrapped client. Used by tests.
	HTTPClient *http.Client
}

// Client talks to the Dataverse Web API and implements OrganizationService.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.Logger
}

var _ OrganizationService = (*Client)(nil)

// NewClient constructs a Web API client. Unless ClientConfig.HTTPClient is
// set, requests carry a bearer token obtained via the client-credentials flow;
// token refresh is handled by the oauth2 transport.
func NewClient(ctx context.Context, cfg ClientConfig, logger *logging.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("dataverse: base URL is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, fmt.Errorf("dataverse: tenant_id, client_id and client_secret are required")
		}
		creds := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
			Scopes:       []string{strings.TrimRight(cfg.BaseURL, "/") + "/.default"},
		}
		httpClient = creds.Client(ctx)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}, nil
}

// WhoAmI executes the WhoAmI function against the Web API.
func (c *Client) WhoAmI(ctx context.Context) (*WhoAmIResult, error) {
	var result WhoAmIResult
	if err := c.getJSON(ctx, c.baseURL+apiPath+"/WhoAmI", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RetrieveMultiple executes a FetchXML query. The query is passed to the
// backend untouched; only its results are translated.
func (c *Client) RetrieveMultiple(ctx context.Context, fetchXML string) (*EntityCollection, error) {
	entityName, err := fetchEntityName(fetchXML)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s%s/%s?fetchXml=%s",
		c.baseURL, apiPath, entitySet(entityName), url.QueryEscape(fetchXML))

	var payload struct {
		Value []map[string]interface{} `json:"value"`
	}
	raw, err := c.getRaw(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("dataverse: decoding query result: %w", err)
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("dataverse: decoding query result: %w", err)
	}
	moreRecords, _ := envelope[moreRecordsKey].(bool)

	collection := &EntityCollection{
		EntityName:  entityName,
		Entities:    make([]*Entity, 0, len(payload.Value)),
		MoreRecords: moreRecords,
	}
	for _, record := range payload.Value {
		collection.Entities = append(collection.Entities, parseRecord(entityName, record))
	}
	return collection, nil
}

// Retrieve reads a single record limited to the given columns.
func (c *Client) Retrieve(ctx context.Context, logicalName string, id uuid.UUID, columns ColumnSet) (*Entity, error) {
	endpoint := fmt.Sprintf("%s%s/%s(%s)", c.baseURL, apiPath, entitySet(logicalName), id)
	if len(columns.Columns) > 0 {
		endpoint += "?$select=" + url.QueryEscape(strings.Join(columns.Columns, ","))
	}

	raw, err := c.getRaw(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var record map[string]interface{}
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("dataverse: decoding record: %w", err)
	}
	return parseRecord(logicalName, record), nil
}

// Update applies the entity's attributes as a PATCH against the record. One
// write per call; the backend decides atomicity.
func (c *Client) Update(ctx context.Context, entity *Entity) error {
	body, err := json.Marshal(updateBody(entity))
	if err != nil {
		return fmt.Errorf("dataverse: encoding update: %w", err)
	}

	endpoint := fmt.Sprintf("%s%s/%s(%s)", c.baseURL, apiPath, entitySet(entity.LogicalName), entity.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Match", "*")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("dataverse: update request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}
	c.logger.Debug("record updated", logging.Fields{
		"entity": entity.LogicalName,
		"id":     entity.ID.String(),
	})
	return nil
}

func (c *Client) getRaw(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", `odata.include-annotations="*"`)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataverse: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	raw, err := c.getRaw(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("dataverse: decoding response: %w", err)
	}
	return nil
}

// APIError is a non-2xx Web API response.
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns the error message.
func (e *APIError) Error() string {
	return fmt.Sprintf("dataverse: %s (status %d)", e.Message, e.StatusCode)
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var odata struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &odata); err == nil && odata.Error.Message != "" {
		message = odata.Error.Message
	}
	if message == "" {
		message = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// parseRecord maps a raw Web API record onto an Entity, folding OData
// annotations into formatted values and lookup references.
func parseRecord(logicalName string, raw map[string]interface{}) *Entity {
	entity := NewEntity(logicalName, uuid.Nil)

	lookupTypes := make(map[string]string)
	for key, value := range raw {
		if s, ok := value.(string); ok && strings.HasSuffix(key, lookupLogicalSuffix) {
			lookupTypes[attributeName(strings.TrimSuffix(key, lookupLogicalSuffix))] = s
		}
	}

	for key, value := range raw {
		switch {
		case strings.HasSuffix(key, formattedValueSuffix):
			if s, ok := value.(string); ok {
				entity.FormattedValues[attributeName(strings.TrimSuffix(key, formattedValueSuffix))] = s
			}
		case strings.Contains(key, "@"):
			// Remaining annotations (etag, navigation properties, paging).
		default:
			name := attributeName(key)
			if name != key {
				// _field_value lookup column: surface as a reference.
				if s, ok := value.(string); ok {
					if id, err := uuid.Parse(s); err == nil {
						entity.Set(name, EntityReference{
							ID:          id,
							LogicalName: lookupTypes[name],
							Name:        entity.FormattedValues[name],
						})
						continue
					}
				}
				entity.Set(name, value)
				continue
			}
			entity.Set(key, value)
		}
	}

	// Lookup display names arrive after attributes when map iteration puts
	// the annotation later; patch them in now that both maps are complete.
	for name, value := range entity.Attributes {
		if ref, ok := value.(EntityReference); ok && ref.Name == "" {
			if display, ok := entity.FormattedValues[name]; ok {
				ref.Name = display
				entity.Attributes[name] = ref
			}
		}
	}

	if idRaw, ok := raw[logicalName+"id"].(string); ok {
		if id, err := uuid.Parse(idRaw); err == nil {
			entity.ID = id
		}
	}
	return entity
}

// attributeName strips the _x_value wrapping from lookup column names.
func attributeName(key string) string {
	if strings.HasPrefix(key, "_") && strings.HasSuffix(key, "_value") {
		return key[1 : len(key)-len("_value")]
	}
	return key
}

// updateBody translates typed attribute values into their Web API wire shape.
func updateBody(entity *Entity) map[string]interface{} {
	body := make(map[string]interface{}, len(entity.Attributes))
	for name, value := range entity.Attributes {
		switch v := value.(type) {
		case Money:
			body[name] = v.Value
		case OptionSetValue:
			body[name] = v.Value
		case EntityReference:
			body[name+"@odata.bind"] = fmt.Sprintf("/%s(%s)", entitySet(v.LogicalName), v.ID)
		case time.Time:
			body[name] = v.UTC().Format(time.RFC3339)
		case []byte:
			body[name] = base64.StdEncoding.EncodeToString(v)
		default:
			body[name] = v
		}
	}
	return body
}

// entitySet derives the Web API entity set name from a logical name.
func entitySet(logicalName string) string {
	switch {
	case strings.HasSuffix(logicalName, "y"):
		return logicalName[:len(logicalName)-1] + "ies"
	case strings.HasSuffix(logicalName, "s"),
		strings.HasSuffix(logicalName, "x"),
		strings.HasSuffix(logicalName, "z"),
		strings.HasSuffix(logicalName, "ch"),
		strings.HasSuffix(logicalName, "sh"):
		return logicalName + "es"
	default:
		return logicalName + "s"
	}
}

// fetchEntityName extracts the entity name from a FetchXML expression. The
// query itself is never validated beyond locating its target entity.
func fetchEntityName(fetchXML string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(fetchXML))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return "", fmt.Errorf("dataverse: fetch expression has no entity element")
		}
		if err != nil {
			return "", fmt.Errorf("dataverse: parsing fetch expression: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "entity" {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "name" && attr.Value != "" {
				return attr.Value, nil
			}
		}
		return "", fmt.Errorf("dataverse: entity element has no name attribute")
	}
}
