package utils

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/Ilia01/attachsync/internal/models"
)

// maxSegmentBytes keeps every element, plus the downloader's ".part"
// suffix, under the 255-byte NAME_MAX of common filesystems.
const maxSegmentBytes = 200

var unsafePathChars = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeSegment makes s usable as a single path element on common
// filesystems. The result is NFC so composed and decomposed input agree.
func SanitizeSegment(s string) string {
	return unsafePathChars.Replace(norm.NFC.String(s))
}

// IssueDir is "{key}-{summary}" with the summary sanitized and shortened
// to fit maxSegmentBytes.
func IssueDir(issue models.Issue) string {
	prefix := issue.IssueKey + "-"
	return prefix + truncateBytes(SanitizeSegment(issue.Summary), maxSegmentBytes-len(prefix))
}

// AttachmentFile is "{id}-{name}"; the id keeps same-named attachments apart.
// Long names lose the end of their base name, never the extension.
func AttachmentFile(att models.Attachment) string {
	prefix := strconv.FormatInt(att.ID, 10) + "-"
	name := SanitizeSegment(att.Name)
	budget := maxSegmentBytes - len(prefix)
	if len(name) > budget {
		ext := filepath.Ext(name)
		if len(ext) > budget/4 {
			ext = ""
		}
		name = truncateBytes(strings.TrimSuffix(name, ext), budget-len(ext)) + ext
	}
	return prefix + name
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func AttachmentPath(baseDir, spaceID string, issue models.Issue, att models.Attachment) string {
	return filepath.Join(baseDir, spaceID, IssueDir(issue), AttachmentFile(att))
}
