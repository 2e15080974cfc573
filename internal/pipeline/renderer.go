package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

// Renderer writes ingestion results as JSON, Markdown or a short summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the result as indented JSON to path
func (r *Renderer) RenderJSON(res *model.CaseIngestionResult, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the Markdown report to path
func (r *Renderer) RenderMarkdown(res *model.CaseIngestionResult, path string) error {
	return writeFile(path, []byte(r.Markdown(res)))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown renders the case report
func (r *Renderer) Markdown(res *model.CaseIngestionResult) string {
	var b strings.Builder
	cf := res.CaseFile

	fmt.Fprintf(&b, "# %s\n\n", firstNonEmpty(cf.Title, cf.ID))
	fmt.Fprintf(&b, "%s\n\n", cf.Summary)
	fmt.Fprintf(&b, "- **Case:** `%s`\n", cf.ID)
	if cf.WorkspaceID != "" {
		fmt.Fprintf(&b, "- **Workspace:** `%s`\n", cf.WorkspaceID)
	}
	fmt.Fprintf(&b, "- **Procedure:** %s\n", cf.ProcedureType)
	if cf.ExternalRef != "" {
		fmt.Fprintf(&b, "- **Reference:** %s\n", cf.ExternalRef)
	}
	if len(cf.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", strings.Join(cf.Tags, ", "))
	}
	fmt.Fprintf(&b, "- **Documents:** %s\n\n", strings.Join(cf.DocumentIDs, ", "))

	b.WriteString("## Actors\n\n")
	if len(res.Actors) == 0 {
		b.WriteString("_No actors found._\n\n")
	} else {
		b.WriteString("| Name | Role | Confidence | Represented by | Contact | Sources |\n")
		b.WriteString("|------|------|-----------:|----------------|---------|---------|\n")
		for _, a := range res.Actors {
			contact := append(append([]string{}, a.Phones...), a.Emails...)
			fmt.Fprintf(&b, "| %s | %s | %.2f | %s | %s | %s |\n",
				cell(a.Name), a.Role, a.Confidence, cell(a.RepresentedBy),
				cell(strings.Join(contact, ", ")), strings.Join(a.SourceDocIDs, ", "))
		}
		b.WriteString("\n")
		for _, a := range res.Actors {
			details := actorDetails(a)
			if len(details) == 0 {
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n", a.Name)
			for _, d := range details {
				fmt.Fprintf(&b, "- %s\n", d)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Deadlines\n\n")
	if len(res.Deadlines) == 0 {
		b.WriteString("_No deadlines extracted._\n\n")
	} else {
		for _, d := range res.Deadlines {
			fmt.Fprintf(&b, "- **%s** %s (%s, %s)\n", d.DueAt, d.Title, d.Priority, d.Status)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Issues\n\n")
	if len(res.Issues) == 0 {
		b.WriteString("_No issues flagged._\n\n")
	} else {
		for _, i := range res.Issues {
			fmt.Fprintf(&b, "- **[%s]** %s: %s (confidence %.2f)\n", i.Priority, i.Title, i.Description, i.Confidence)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Memory\n\n")
	for _, e := range res.MemoryEvents {
		fmt.Fprintf(&b, "- %s\n", e.Summary)
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\n\n_Generated by casefile on %s. Extraction is pattern-based; verify every entry against the source documents._\n",
			cf.UpdatedAt.Format("2006-01-02 15:04 MST"))
	}
	return b.String()
}

func actorDetails(a model.CaseActor) []string {
	var out []string
	add := func(label string, values []string) {
		if len(values) > 0 {
			out = append(out, fmt.Sprintf("%s: %s", label, strings.Join(values, "; ")))
		}
	}
	if a.OrganizationName != "" && a.OrganizationName != a.Name {
		out = append(out, "Organization: "+a.OrganizationName)
	}
	add("Aliases", a.Aliases)
	add("Represents", a.RepresentedParties)
	add("Addresses", a.Addresses)
	add("Demands", a.Demands)
	add("Claim amounts", a.ClaimAmounts)
	add("Representation conflicts", a.RepresentedByConflicts)
	if a.Notes != "" {
		out = append(out, "Notes: "+a.Notes)
	}
	return out
}

// cell escapes a value for a Markdown table
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderSummary prints a short overview
func (r *Renderer) RenderSummary(w io.Writer, res *model.CaseIngestionResult) {
	cf := res.CaseFile
	fmt.Fprintf(w, "\n%s\n", cf.Summary)
	fmt.Fprintf(w, "Procedure: %s\n", cf.ProcedureType)
	for _, a := range res.Actors {
		fmt.Fprintf(w, "  %-18s %-40s %.2f\n", a.Role, a.Name, a.Confidence)
	}
	for _, d := range res.Deadlines {
		fmt.Fprintf(w, "  deadline           %s\n", d.DueAt)
	}
	for _, i := range res.Issues {
		fmt.Fprintf(w, "  issue              %s (%s)\n", i.Title, i.Priority)
	}
}

// RenderScan prints one document scan, for classify
func (r *Renderer) RenderScan(w io.Writer, doc model.SourceDocument, scan model.DocumentScan) {
	fmt.Fprintf(w, "Document:  %s\n", firstNonEmpty(doc.Title, doc.ID))
	fmt.Fprintf(w, "Procedure: %s\n", scan.ProcedureType)
	fmt.Fprintf(w, "Weight:    %.2f\n", scan.Weight)
	for _, s := range scan.Reliability {
		fmt.Fprintf(w, "  %+.2f %s\n", s.Delta, s.Description)
	}
	fmt.Fprintf(w, "Actors:    %d\n", len(scan.Profiles))
	for _, p := range scan.Profiles {
		fmt.Fprintf(w, "  %-18s %-40s %.2f\n", p.Role, p.Name, p.Confidence)
		if p.RepresentedBy != "" {
			fmt.Fprintf(w, "    represented by %s\n", p.RepresentedBy)
		}
	}
	for _, d := range scan.Deadlines {
		fmt.Fprintf(w, "Deadline:  %s\n", d)
	}
	for _, i := range scan.Issues {
		fmt.Fprintf(w, "Issue:     %s (%s)\n", i.Title, i.Priority)
	}
}
