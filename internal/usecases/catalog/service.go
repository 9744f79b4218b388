package catalog

import (
	"time"

	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/dataverse"
	"github.com/FreePeak/dataverse-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/dataverse-mcp-server/internal/usecases/crm"
)

// UI resource URIs the tools bind to.
const (
	ClockAppURI            = "ui://get-time/clock"
	ContactFormURI         = "ui://get-contact/form"
	ContactListURI         = "ui://get-contact/list"
	OpportunityFormURI     = "ui://get-opportunity/form"
	OpportunityListURI     = "ui://get-opportunity/list"
	OpportunityChartURI    = "ui://get-opportunity/chart"
	OpportunityTopGraphURI = "ui://get-opportunity/topgraph"
)

// Service builds the tool set over one organization connection.
type Service struct {
	org    dataverse.OrganizationService
	writer *crm.Writer
	logger *logging.Logger
	now    func() time.Time
}

// NewService creates a Service bound to the organization connection.
func NewService(org dataverse.OrganizationService, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		org:    org,
		writer: crm.NewWriter(org, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Register adds every tool to the catalog.
func (s *Service) Register(c *Catalog) error {
	for _, register := range []func(*Catalog) error{
		s.registerTimeTools,
		s.registerDataverseTools,
		s.registerContactTools,
		s.registerOpportunityTools,
	} {
		if err := register(c); err != nil {
			return err
		}
	}
	return nil
}
