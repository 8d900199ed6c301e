package backlog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ilia01/attachsync/internal/models"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, pageSize, want int
	}{
		{0, 100, 1},
		{1, 100, 1},
		{99, 100, 1},
		{100, 100, 2},
		{250, 100, 3},
		{250, 0, 3},
		{-5, 100, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.total, tt.pageSize), func(t *testing.T) {
			assert.Equal(t, tt.want, PageCount(tt.total, tt.pageSize))
		})
	}
}

func TestIssuesPaginatesByOffset(t *testing.T) {
	api := &fakeIssueAPI{total: 250}
	client := newTestClient(api.roundTrip)

	issues, errs := collect(client.Issues(context.Background(), "42"))

	assert.Empty(t, errs)
	assert.Equal(t, []int{0, 100, 200}, api.offsets)
	require.Len(t, issues, 250)
	assert.Equal(t, "P-1", issues[0].IssueKey)
	assert.Equal(t, "P-250", issues[249].IssueKey)
}

func TestIssuesWithZeroTotalQueriesOnePage(t *testing.T) {
	api := &fakeIssueAPI{total: 0}
	client := newTestClient(api.roundTrip)

	issues, errs := collect(client.Issues(context.Background(), "42"))

	assert.Empty(t, errs)
	assert.Empty(t, issues)
	assert.Equal(t, []int{0}, api.offsets)
}

func TestIssuesMalformedCount(t *testing.T) {
	var pageRequests int
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/count") {
			return jsonResponse(http.StatusOK, `count: lots`), nil
		}
		pageRequests++
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	issues, errs := collect(client.Issues(context.Background(), "42"))

	assert.Empty(t, issues)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrInvalidResponse)
	assert.Zero(t, pageRequests)
}

func TestIssuesSkipsMalformedPage(t *testing.T) {
	api := &fakeIssueAPI{total: 250, brokenOffset: 100}
	client := newTestClient(api.roundTrip)

	issues, errs := collect(client.Issues(context.Background(), "42"))

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrInvalidResponse)
	assert.Contains(t, errs[0].Error(), "offset 100")
	assert.Len(t, issues, 150)
	assert.Equal(t, []int{0, 100, 200}, api.offsets)
}

func TestIssuesStopsWhenConsumerBreaks(t *testing.T) {
	api := &fakeIssueAPI{total: 250}
	client := newTestClient(api.roundTrip)

	for issue, err := range client.Issues(context.Background(), "42") {
		require.NoError(t, err)
		if issue.IssueKey == "P-3" {
			break
		}
	}
	assert.Equal(t, []int{0}, api.offsets)
}

func TestIssuesStopsOnCanceledContext(t *testing.T) {
	api := &fakeIssueAPI{total: 250}
	client := newTestClient(api.roundTrip)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	issues, errs := collect(client.Issues(ctx, "42"))

	assert.Empty(t, issues)
	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[len(errs)-1], context.Canceled)
	assert.Empty(t, api.offsets)
}

type fakeIssueAPI struct {
	total        int
	brokenOffset int
	offsets      []int
}

func (f *fakeIssueAPI) roundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	if strings.HasSuffix(req.URL.Path, "/count") {
		return jsonResponse(http.StatusOK, fmt.Sprintf(`{"count":%d}`, f.total)), nil
	}

	offset, _ := strconv.Atoi(req.URL.Query().Get("offset"))
	count, _ := strconv.Atoi(req.URL.Query().Get("count"))
	f.offsets = append(f.offsets, offset)
	if f.brokenOffset != 0 && offset == f.brokenOffset {
		return jsonResponse(http.StatusOK, `{"truncated`), nil
	}

	var records []string
	for n := offset + 1; n <= min(offset+count, f.total); n++ {
		records = append(records, fmt.Sprintf(`{"issueKey":"P-%d","summary":"Issue %d"}`, n, n))
	}
	return jsonResponse(http.StatusOK, "["+strings.Join(records, ",")+"]"), nil
}

func collect(seq func(func(models.Issue, error) bool)) ([]models.Issue, []error) {
	var issues []models.Issue
	var errs []error
	for issue, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		issues = append(issues, issue)
	}
	return issues, errs
}
