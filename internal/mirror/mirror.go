// Package mirror drives a full pass over a project: every issue, every
// attachment, one request at a time. Failures are reported per unit and never
// stop the pass.
package mirror

import (
	"context"
	"io"
	"iter"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/Ilia01/attachsync/internal/download"
	"github.com/Ilia01/attachsync/internal/models"
	"github.com/Ilia01/attachsync/internal/utils"
)

type Remote interface {
	Issues(ctx context.Context, projectID string) iter.Seq2[models.Issue, error]
	ListAttachments(ctx context.Context, issueKey string) ([]models.Attachment, error)
	OpenAttachment(ctx context.Context, issueKey string, attachmentID int64) (io.ReadCloser, error)
}

type Downloader interface {
	Download(ctx context.Context, src download.Source, localPath string) (download.Result, error)
}

type Runner struct {
	Remote     Remote
	Downloader Downloader
	BaseDir    string
	SpaceID    string
	Out        io.Writer
	Err        io.Writer
	Logger     *slog.Logger
}

// Summary tallies one pass. It is informational only.
type Summary struct {
	Issues      int
	Attachments int
	Downloaded  int
	Skipped     int
	Errors      int
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("issues", s.Issues),
		slog.Int("attachments", s.Attachments),
		slog.Int("downloaded", s.Downloaded),
		slog.Int("skipped", s.Skipped),
		slog.Int("errors", s.Errors),
	)
}

func (r *Runner) Run(ctx context.Context, projectID string) Summary {
	p := newPrinter(r.Out, r.Err)
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var summary Summary
	for issue, err := range r.Remote.Issues(ctx, projectID) {
		if err != nil {
			summary.Errors++
			p.failure(err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		summary.Issues++
		logger.DebugContext(ctx, "issue", "line", issue.IssueKey+","+issue.Summary)
		r.syncIssue(ctx, p, logger, issue, &summary)
		if ctx.Err() != nil {
			break
		}
	}

	logger.InfoContext(ctx, "sync finished", "project", projectID, "summary", summary)
	return summary
}

func (r *Runner) syncIssue(ctx context.Context, p printer, logger *slog.Logger, issue models.Issue, summary *Summary) {
	attachments, err := r.Remote.ListAttachments(ctx, issue.IssueKey)
	if err != nil {
		summary.Errors++
		p.failure(err)
		return
	}
	if len(attachments) == 0 {
		p.noAttachments(issue)
		return
	}

	p.hasAttachments(issue)
	for _, att := range attachments {
		if ctx.Err() != nil {
			return
		}
		summary.Attachments++

		path := utils.AttachmentPath(r.BaseDir, r.SpaceID, issue, att)
		src := download.SourceFunc(func(ctx context.Context) (io.ReadCloser, error) {
			return r.Remote.OpenAttachment(ctx, issue.IssueKey, att.ID)
		})

		result, err := r.Downloader.Download(ctx, src, path)
		if err != nil {
			summary.Errors++
			p.failure(err)
			continue
		}

		logger.DebugContext(ctx, "attachment "+result.String(),
			"issue", issue.IssueKey,
			"path", path,
			"size", humanize.Bytes(uint64(max(att.Size, 0))),
			"uploader", att.CreatedUser.Name,
			"created", att.Created,
		)
		switch result {
		case download.Skipped:
			summary.Skipped++
			p.skipped(path)
		case download.Downloaded:
			summary.Downloaded++
			p.downloaded(path)
		}
	}
}
