package catalog

import (
	"context"
	"fmt"

	"github.com/FreePeak/dataverse-mcp-server/internal/domain"
	"github.com/FreePeak/dataverse-mcp-server/internal/usecases/crm"
)

// opportunityFieldTypes maps writable opportunity columns to their coercions.
var opportunityFieldTypes = map[string]crm.FieldType{
	"name":               crm.FieldText,
	"estimatedvalue":     crm.FieldMoney,
	"estimatedclosedate": crm.FieldDate,
	"closeprobability":   crm.FieldInt,
}

func (s *Service) registerOpportunityTools(c *Catalog) error {
	listParams := []domain.ToolParameter{
		{Name: "logicalName", Description: "The entity logical name, normally opportunity.", Type: "string", Required: true},
		{Name: "opportunitiesJson", Description: "A JSON array of opportunity objects from ExecuteFetch. Each object should have id, name, customerid, estimatedvalue, statecode, estimatedclosedate, and closeprobability fields.", Type: "string", Required: true},
	}

	registrations := []struct {
		tool    domain.Tool
		handler Handler
	}{
		{
			tool: domain.Tool{
				Name: "ShowOpportunity",
				Description: "Displays an interactive opportunity card for exactly ONE opportunity. " +
					"Use only when ExecuteFetch returned a single opportunity record. Pass that record's fields as arguments. " +
					"If ExecuteFetch returned multiple opportunities, use ShowManyOpportunities instead.",
				Parameters: []domain.ToolParameter{
					{Name: "id", Description: "The opportunity record id.", Type: "string", Required: true},
					{Name: "logicalName", Description: "The entity logical name, normally opportunity.", Type: "string", Required: true},
					{Name: "name", Description: "Opportunity topic.", Type: "string"},
					{Name: "customerid", Description: "Customer display name.", Type: "string"},
					{Name: "estimatedvalue", Description: "Estimated revenue.", Type: "string"},
					{Name: "statecode", Description: "Opportunity state.", Type: "string"},
					{Name: "estimatedclosedate", Description: "Estimated close date.", Type: "string"},
					{Name: "closeprobability", Description: "Probability of closing, percent.", Type: "string"},
				},
				UI: domain.ToolUIMeta{ResourceURI: OpportunityFormURI},
			},
			handler: s.showOpportunity,
		},
		{
			tool: domain.Tool{
				Name: "ShowManyOpportunities",
				Description: "Displays an opportunity list for multiple opportunities. " +
					"Use when ExecuteFetch returned two or more opportunity records. " +
					"Pass the full JSON array of opportunity objects from the ExecuteFetch result.",
				Parameters:  listParams,
				UI:          domain.ToolUIMeta{ResourceURI: OpportunityListURI},
			},
			handler: s.showManyOpportunities,
		},
		{
			tool: domain.Tool{
				Name: "ShowOpportunityPipeline",
				Description: "Displays the opportunity pipeline — a bar chart of estimated values aggregated by month. " +
					"Use when the user asks for a pipeline view, chart, visualization, or summary of opportunity values over time. " +
					"Pass the full JSON array of opportunity objects from the ExecuteFetch result.",
				Parameters:  listParams,
				UI:          domain.ToolUIMeta{ResourceURI: OpportunityChartURI},
			},
			handler: s.showOpportunityPipeline,
		},
		{
			tool: domain.Tool{
				Name: "ShowTopOpportunityGraph",
				Description: "Displays a horizontal bar graph of the top opportunities ranked by estimated value. " +
					"Use when the user asks for a top opportunities graph, ranking, or leaderboard. " +
					"Pass the full JSON array of opportunity objects from the ExecuteFetch result.",
				Parameters:  listParams,
				UI:          domain.ToolUIMeta{ResourceURI: OpportunityTopGraphURI},
			},
			handler: s.showTopOpportunityGraph,
		},
		{
			tool: domain.Tool{
				Name:        "UpdateOpportunity",
				Description: "Updates an opportunity record in Dataverse. Only callable by the opportunity form UI.",
				Parameters: []domain.ToolParameter{
					{Name: "id", Description: "The opportunity record id.", Type: "string", Required: true},
					{Name: "logicalName", Description: "The entity logical name, normally opportunity.", Type: "string", Required: true},
					{Name: "name", Description: "Opportunity topic.", Type: "string"},
					{Name: "estimatedvalue", Description: "Estimated revenue as a plain decimal number.", Type: "string"},
					{Name: "estimatedclosedate", Description: "Estimated close date.", Type: "string"},
					{Name: "closeprobability", Description: "Probability of closing, percent.", Type: "string"},
				},
				UI: domain.ToolUIMeta{AppOnly: true},
			},
			handler: s.updateOpportunity,
		},
	}

	for _, r := range registrations {
		if err := c.Register(r.tool, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) showOpportunity(ctx context.Context, args Arguments) (string, error) {
	fields := args.Strings("name", "customerid", "estimatedvalue")
	return fmt.Sprintf("%s - %s (%s)", fields["name"], fields["customerid"], fields["estimatedvalue"]), nil
}

func (s *Service) showManyOpportunities(ctx context.Context, args Arguments) (string, error) {
	logicalName, _ := args.String("logicalName")
	return fmt.Sprintf("Displaying opportunity list (%s)", logicalName), nil
}

func (s *Service) showOpportunityPipeline(ctx context.Context, args Arguments) (string, error) {
	logicalName, _ := args.String("logicalName")
	return fmt.Sprintf("Displaying opportunity pipeline (%s)", logicalName), nil
}

func (s *Service) showTopOpportunityGraph(ctx context.Context, args Arguments) (string, error) {
	logicalName, _ := args.String("logicalName")
	return fmt.Sprintf("Displaying top opportunity graph (%s)", logicalName), nil
}

func (s *Service) updateOpportunity(ctx context.Context, args Arguments) (string, error) {
	id, logicalName, err := recordIdentity("UpdateOpportunity", args)
	if err != nil {
		return "", err
	}

	fields := args.Strings("name", "estimatedvalue", "estimatedclosedate", "closeprobability")
	if err := s.writer.UpdateFields(ctx, logicalName, id, fields, opportunityFieldTypes); err != nil {
		return ErrorPrefix + err.Error(), nil
	}
	return "Opportunity updated successfully.", nil
}
