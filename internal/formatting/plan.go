package formatting

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"storesync/internal/diff"
	"storesync/internal/reconciler"
)

// Plan renders the pending operations of a reconciliation plan.
func (p *Printer) Plan(plan *reconciler.Plan) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(plan)
	case FormatYAML:
		return p.printYAML(plan)
	}

	if plan.InSync() {
		if !p.opts.Quiet {
			fmt.Fprintln(p.out, "Everything is in sync.")
		}
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{p.header("STAGE"), p.header("OPERATION"), p.header("TYPE"), p.header("NAME"), p.header("CHANGES")})

	for _, stage := range plan.Stages {
		for _, r := range stage.Results {
			t.AppendRow(table.Row{
				stage.Name,
				p.operation(r.Operation),
				r.EntityType,
				r.EntityName,
				describeChanges(r),
			})
		}
	}
	t.Render()

	summary := plan.Summary()
	fmt.Fprintf(p.out, "%d to create, %d to update, %d to delete\n",
		summary.Creates, summary.Updates, summary.Deletes)
	return nil
}

func describeChanges(r diff.Result) string {
	if len(r.Changes) == 0 {
		return ""
	}
	parts := make([]string, len(r.Changes))
	for i, c := range r.Changes {
		parts[i] = c.Description
	}
	return strings.Join(parts, "\n")
}

func (p *Printer) header(s string) interface{} {
	if p.opts.Color {
		return text.FgHiCyan.Sprint(s)
	}
	return s
}

func (p *Printer) operation(op diff.Operation) interface{} {
	if !p.opts.Color {
		return string(op)
	}
	switch op {
	case diff.OperationCreate:
		return text.FgGreen.Sprint(op)
	case diff.OperationUpdate:
		return text.FgYellow.Sprint(op)
	case diff.OperationDelete:
		return text.FgRed.Sprint(op)
	default:
		return string(op)
	}
}
