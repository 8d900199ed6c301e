package backlog

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"

	"github.com/Ilia01/attachsync/internal/config"
	"github.com/Ilia01/attachsync/internal/models"
)

var summaryLineBreaks = strings.NewReplacer("\r", "", "\n", "")

// PageCount returns how many listing requests cover total issues. A partial
// last page still needs a request, so the result is always at least one.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	return total/pageSize + 1
}

func (c *Client) CountIssues(ctx context.Context, projectID string) (int, error) {
	var result models.IssueCount
	if err := c.getJSON(ctx, "/api/v2/issues/count", projectQuery(projectID), &result); err != nil {
		return 0, fmt.Errorf("count issues: %w", err)
	}
	return result.Count, nil
}

func (c *Client) ListIssuesPage(ctx context.Context, projectID string, offset int) ([]models.Issue, error) {
	query := projectQuery(projectID)
	query.Set("offset", strconv.Itoa(offset))
	query.Set("count", strconv.Itoa(c.pageSize))

	var issues []models.Issue
	if err := c.getJSON(ctx, "/api/v2/issues", query, &issues); err != nil {
		return nil, fmt.Errorf("list issues at offset %d: %w", offset, err)
	}
	for i := range issues {
		issues[i].Summary = summaryLineBreaks.Replace(issues[i].Summary)
	}
	return issues, nil
}

// Issues walks every issue of the project. A failed count ends the sequence
// after a single error; a failed page yields its error and the walk moves on
// to the next offset.
func (c *Client) Issues(ctx context.Context, projectID string) iter.Seq2[models.Issue, error] {
	return func(yield func(models.Issue, error) bool) {
		total, err := c.CountIssues(ctx, projectID)
		if err != nil {
			yield(models.Issue{}, err)
			return
		}

		for page := range PageCount(total, c.pageSize) {
			if err := ctx.Err(); err != nil {
				yield(models.Issue{}, err)
				return
			}

			issues, err := c.ListIssuesPage(ctx, projectID, page*c.pageSize)
			if err != nil {
				if !yield(models.Issue{}, err) {
					return
				}
				continue
			}
			for _, issue := range issues {
				if !yield(issue, nil) {
					return
				}
			}
		}
	}
}

func projectQuery(projectID string) url.Values {
	return url.Values{"projectId[]": []string{projectID}}
}
