package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
	"github.com/dmitrijs2005/attachkeeper/internal/client/registry"
)

func statusGlyph(a models.Attachment) string {
	switch a.Status() {
	case models.StatusInProgress:
		return "…"
	case models.StatusStored:
		return "✓"
	default:
		return "✗"
	}
}

// PrintTable writes one row per attachment: name, size, status, object key
// and the last error, if any.
func PrintTable(w io.Writer, s *registry.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE NAME\tFILE SIZE\tUPLOADED\tOBJECT KEY\tERROR")
	for _, a := range s.Attachments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.File.Name, a.File.HumanSize(), statusGlyph(a), a.ObjectKey, a.LastError)
	}
	return tw.Flush()
}
