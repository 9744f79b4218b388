package catalog

import (
	"context"
	"encoding/json"

	"github.com/FreePeak/dataverse-mcp-server/internal/domain"
	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/dataverse-mcp-server/internal/usecases/query"
)

func (s *Service) registerDataverseTools(c *Catalog) error {
	if err := c.Register(domain.Tool{
		Name:        "WhoAmI",
		Description: "Executes a WhoAmI request against Dataverse and returns the result as a JSON string.",
	}, s.whoAmI); err != nil {
		return err
	}

	return c.Register(domain.Tool{
		Name: "ExecuteFetch",
		Description: "Executes a FetchXML request using the supplied expression that needs to be a valid FetchXml expression. " +
			"Returns the result as a compact JSON string with field schema names and their formatted values. " +
			"If the request fails, the response will be prepended with [ERROR] and the error should be presented to the user.",
		Parameters: []domain.ToolParameter{
			{Name: "fetchXmlRequest", Description: "A valid FetchXml expression.", Type: "string", Required: true},
		},
	}, s.executeFetch)
}

func (s *Service) whoAmI(ctx context.Context, args Arguments) (string, error) {
	result, err := s.org.WhoAmI(ctx)
	if err != nil {
		s.logger.WithError(err).Error("WhoAmI failed")
		return ErrorPrefix + err.Error(), nil
	}
	out, err := json.Marshal(result)
	if err != nil {
		return ErrorPrefix + err.Error(), nil
	}
	return string(out), nil
}

func (s *Service) executeFetch(ctx context.Context, args Arguments) (string, error) {
	fetchXML, ok := args.String("fetchXmlRequest")
	if !ok {
		return "", domain.NewMissingArgumentError("ExecuteFetch", "fetchXmlRequest")
	}

	collection, err := s.org.RetrieveMultiple(ctx, fetchXML)
	if err != nil {
		s.logger.WithError(err).Error("fetch execution failed", logging.Fields{
			"fetchBytes": len(fetchXML),
		})
		return ErrorPrefix + err.Error(), nil
	}

	out, err := query.NormalizeJSON(collection)
	if err != nil {
		return ErrorPrefix + err.Error(), nil
	}
	return out, nil
}
