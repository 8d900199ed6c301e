package mirror

import (
	"fmt"
	"io"

	"github.com/Ilia01/attachsync/internal/models"
	"github.com/Ilia01/attachsync/internal/utils"
)

// printer writes the line-oriented status protocol. Colors only appear when
// the destination is a terminal.
type printer struct {
	out, err       io.Writer
	outPal, errPal utils.Palette
}

func newPrinter(out, errOut io.Writer) printer {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return printer{
		out:    out,
		err:    errOut,
		outPal: utils.NewPalette(out),
		errPal: utils.NewPalette(errOut),
	}
}

func (p printer) hasAttachments(issue models.Issue) {
	fmt.Fprintf(p.out, "%s %s - %s\n", p.outPal.Cyan("has attachments:"), issue.IssueKey, issue.Summary)
}

func (p printer) noAttachments(issue models.Issue) {
	fmt.Fprintf(p.out, "%s %s - %s\n", p.outPal.Dim("no attachments:"), issue.IssueKey, issue.Summary)
}

func (p printer) skipped(path string) {
	fmt.Fprintf(p.out, "%s %s\n", p.outPal.Yellow("SKIP:"), path)
}

func (p printer) downloaded(path string) {
	fmt.Fprintf(p.out, "%s %s\n", p.outPal.Green("DL:"), path)
}

func (p printer) failure(err error) {
	fmt.Fprintf(p.err, "%s %v\n", p.errPal.Red("Error:"), err)
}
