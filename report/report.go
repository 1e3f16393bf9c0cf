// Package report renders verification reports
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/thechriswalker/go-verifier/config"
	"github.com/thechriswalker/go-verifier/verifier"
)

// maxMessageWidth wraps long findings in text tables
const maxMessageWidth = 80

// Render writes rep in the given format
func Render(w io.Writer, rep *verifier.Report, f config.Format) error {
	switch f {
	case config.FormatText, "":
		_, err := io.WriteString(w, Table(rep, false))
		return err
	case config.FormatMarkdown:
		_, err := io.WriteString(w, Table(rep, true))
		return err
	case config.FormatJSON:
		return JSON(w, rep)
	case config.FormatHTML:
		return HTML(w, rep)
	}
	return fmt.Errorf("unknown report format %q", f)
}

// JSON is the canonical machine readable form. Identical reports give
// identical bytes.
func JSON(w io.Writer, rep *verifier.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// Table renders one row per verification with a summary footer
func Table(rep *verifier.Report, markdown bool) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Verification", "Category", "Status", "Details"})
	for _, r := range rep.Results {
		tw.AppendRow(table.Row{r.ID.String(), r.Name, string(r.Category), r.Status.String(), details(r.Outcome, markdown)})
	}
	tw.AppendFooter(table.Row{"", "Overall", "", rep.Status.String(), summary(rep)})
	tw.Style().Format.Footer = text.FormatDefault
	if markdown {
		return "# Verification report\n\nDataset `" + rep.Fingerprint + "`\n\n" + tw.RenderMarkdown() + "\n"
	}
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Footer = text.FormatDefault
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignCenter},
		{Number: 5, WidthMax: maxMessageWidth},
	})
	return "Dataset " + rep.Fingerprint + "\n" + tw.Render() + "\n"
}

func details(o verifier.Outcome, markdown bool) string {
	sep := "\n"
	if markdown {
		sep = "<br>"
	}
	switch o.Status {
	case verifier.StatusErrored:
		return strings.Join(append([]string{o.Cause}, o.Findings...), sep)
	case verifier.StatusFailed:
		return strings.Join(o.Findings, sep)
	}
	return o.Reason
}

func summary(rep *verifier.Report) string {
	c := rep.Counts()
	return fmt.Sprintf("%d successful, %d failed, %d errored, %d skipped",
		c[verifier.StatusSuccessful], c[verifier.StatusFailed], c[verifier.StatusErrored], c[verifier.StatusSkipped])
}

// Catalog lists the entries of a catalog
func Catalog(c *verifier.Catalog, markdown bool) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Phase", "Verification", "Category", "Family", "Requires", "Implemented"})
	for _, e := range c.Entries() {
		req := make([]string, len(e.Requires))
		for i, f := range e.Requires {
			req[i] = f.String()
		}
		impl := "yes"
		if !e.Implemented() {
			impl = "no"
		}
		tw.AppendRow(table.Row{e.ID.String(), e.ID.Phase.String(), e.Name, string(e.Category), string(e.Family), strings.Join(req, ", "), impl})
	}
	tw.AppendFooter(table.Row{"", "", fmt.Sprintf("%d verifications", c.Len())})
	if markdown {
		tw.Style().Format.Footer = text.FormatDefault
		return tw.RenderMarkdown() + "\n"
	}
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Footer = text.FormatDefault
	return tw.Render() + "\n"
}
