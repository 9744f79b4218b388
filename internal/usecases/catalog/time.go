package catalog

import (
	"context"

	"github.com/FreePeak/dataverse-mcp-server/internal/domain"
)

// timeFormat renders the current time for the clock app.
const timeFormat = "2006-01-02 15:04:05"

func (s *Service) registerTimeTools(c *Catalog) error {
	return c.Register(domain.Tool{
		Name:        "GetTime",
		Description: "Gets the current date and time.",
		UI:          domain.ToolUIMeta{ResourceURI: ClockAppURI},
	}, s.getTime)
}

func (s *Service) getTime(ctx context.Context, args Arguments) (string, error) {
	return s.now().UTC().Format(timeFormat) + " UTC", nil
}
