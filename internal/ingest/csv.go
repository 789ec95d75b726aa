// Package ingest turns uploaded CSV files into catalog entries. Rows are
// validated and persisted independently; one bad row never rolls back the
// rest of the batch.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"lab-inventory-api-server/internal/inventory"
	"lab-inventory-api-server/internal/models"

	"github.com/rs/zerolog/log"
)

// ComponentDraft is a partially populated component extracted from one CSV
// row, before catalog validation and optional AI enrichment.
type ComponentDraft struct {
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	TotalQuantity int      `json:"totalQuantity"`
	Threshold     *int     `json:"threshold,omitempty"`
	Tags          []string `json:"tags"`
	DatasheetLink string   `json:"datasheetLink"`
	Condition     string   `json:"condition"`
	Remarks       string   `json:"remarks"`
}

// Column aliases, matched after lowercasing and stripping spaces/underscores.
var columnAliases = map[string][]string{
	"name":      {"name", "component", "componentname", "item", "itemname", "product", "productname", "title"},
	"category":  {"category", "type", "cat", "componenttype", "componentcategory"},
	"quantity":  {"quantity", "qty", "amount", "stock", "totalquantity", "stockquantity", "totalstock", "total"},
	"threshold": {"threshold", "reorderlevel", "minstock", "minimumstock"},
	"desc":      {"description", "desc", "details", "componentdescription"},
	"tags":      {"tags", "tag", "keywords", "keyword"},
	"datasheet": {"datasheet", "datasheetlink", "link", "url", "datasheeturl"},
	"condition": {"condition", "state", "quality"},
	"remarks":   {"remarks", "notes", "comment", "comments", "additionalnotes"},
}

var numberPattern = regexp.MustCompile(`-?\d+`)

// Parse reads a CSV document with a header row and maps each remaining row
// onto a ComponentDraft. Header matching is forgiving about case, spaces and
// underscores, the way real lab spreadsheets are exported.
func Parse(r io.Reader) ([]ComponentDraft, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []ComponentDraft{}, nil
		}
		return nil, err
	}

	index := map[string]int{}
	for i, col := range header {
		index[normalizeColumn(col)] = i
	}
	lookup := func(row []string, field string) string {
		for _, alias := range columnAliases[field] {
			if i, ok := index[alias]; ok && i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	var drafts []ComponentDraft
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		draft := ComponentDraft{
			Name:          lookup(row, "name"),
			Category:      lookup(row, "category"),
			Description:   lookup(row, "desc"),
			DatasheetLink: lookup(row, "datasheet"),
			Remarks:       lookup(row, "remarks"),
		}
		if draft.Category == "" {
			draft.Category = "Other"
		}
		draft.TotalQuantity = extractNumber(lookup(row, "quantity"))
		if t := lookup(row, "threshold"); t != "" {
			n := extractNumber(t)
			draft.Threshold = &n
		}
		if tags := lookup(row, "tags"); tags != "" {
			for _, t := range strings.Split(tags, ",") {
				if t = strings.TrimSpace(t); t != "" {
					draft.Tags = append(draft.Tags, t)
				}
			}
		}
		if cond := strings.ToLower(lookup(row, "condition")); models.ValidCondition(cond) {
			draft.Condition = cond
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func normalizeColumn(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	col = strings.ReplaceAll(col, " ", "")
	col = strings.ReplaceAll(col, "_", "")
	return col
}

// extractNumber pulls the first integer out of values like "10", "10 pcs"
// or "x 5 units". Missing or non-numeric values become 0.
func extractNumber(value string) int {
	match := numberPattern.FindString(value)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// RowResult reports the outcome of one CSV row.
type RowResult struct {
	Row         int    `json:"row"`
	ComponentID string `json:"componentId,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Report summarizes a bulk ingestion.
type Report struct {
	Created int         `json:"created"`
	Failed  int         `json:"failed"`
	Results []RowResult `json:"results"`
}

// Ingest creates one catalog entry per draft through the normal create
// contract. Failures are collected per row; earlier successes stand.
func Ingest(ctx context.Context, svc *inventory.Service, drafts []ComponentDraft) Report {
	report := Report{Results: make([]RowResult, 0, len(drafts))}
	for i, draft := range drafts {
		comp, err := svc.CreateComponent(ctx, inventory.CreateComponentInput{
			Name:          draft.Name,
			Category:      draft.Category,
			Description:   draft.Description,
			TotalQuantity: draft.TotalQuantity,
			Threshold:     draft.Threshold,
			Tags:          draft.Tags,
			DatasheetLink: draft.DatasheetLink,
			Condition:     draft.Condition,
			Remarks:       draft.Remarks,
		})
		result := RowResult{Row: i + 1}
		if err != nil {
			result.Error = err.Error()
			report.Failed++
			log.Warn().Err(err).Int("row", i+1).Msg("csv row rejected")
		} else {
			result.ComponentID = comp.ComponentID
			report.Created++
		}
		report.Results = append(report.Results, result)
	}
	return report
}
