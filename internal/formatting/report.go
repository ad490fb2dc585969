package formatting

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"storesync/internal/reconciler"
	"storesync/internal/resilience"
)

// Report renders the outcome of a deploy run, including per-stage
// resilience metrics when any were recorded.
func (p *Printer) Report(report *reconciler.Report) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(reportDocument(report))
	case FormatYAML:
		return p.printYAML(reportDocument(report))
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{p.header("STAGE"), p.header("CREATED"), p.header("UPDATED"), p.header("DELETED"), p.header("SKIPPED"), p.header("FAILED")})

	for _, s := range report.Stages {
		failed := interface{}(s.Failed)
		if s.Failed > 0 && p.opts.Color {
			failed = text.FgRed.Sprint(s.Failed)
		}
		t.AppendRow(table.Row{s.Name, s.Created, s.Updated, s.Deleted, s.Skipped, failed})
	}
	t.Render()

	if !p.opts.Quiet {
		fmt.Fprintf(p.out, "Run %s\n", report.RunID)
	}

	if !p.opts.Quiet {
		p.stageMetrics(report.Stages)
	}

	if report.Failed() {
		fmt.Fprintln(p.out, "Deploy finished with failures.")
		for _, s := range report.Stages {
			if s.Err != nil {
				fmt.Fprintf(p.out, "  %s: %v\n", s.Name, s.Err)
			}
		}
	}
	return nil
}

// stageMetrics prints the resilience counters for stages that recorded
// any. A clean run against a quiet API prints nothing.
func (p *Printer) stageMetrics(stages []reconciler.StageReport) {
	interesting := false
	for _, s := range stages {
		if s.Metrics != (resilience.StageMetrics{}) {
			interesting = true
			break
		}
	}
	if !interesting {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{p.header("STAGE"), p.header("RATE LIMITS"), p.header("RETRIES"), p.header("GRAPHQL ERRORS"), p.header("NETWORK ERRORS")})
	for _, s := range stages {
		t.AppendRow(table.Row{s.Name, s.Metrics.RateLimitHits, s.Metrics.RetryAttempts, s.Metrics.GraphQLErrors, s.Metrics.NetworkErrors})
	}
	t.Render()
}

// reportStage mirrors StageReport with the error rendered as a string.
type reportStage struct {
	Name    string                  `json:"name"`
	Created int                     `json:"created"`
	Updated int                     `json:"updated"`
	Deleted int                     `json:"deleted"`
	Skipped int                     `json:"skipped"`
	Failed  int                     `json:"failed"`
	Error   string                  `json:"error,omitempty"`
	Metrics resilience.StageMetrics `json:"metrics"`
}

type reportDoc struct {
	RunID  string        `json:"runId"`
	Failed bool          `json:"failed"`
	Stages []reportStage `json:"stages"`
}

func reportDocument(report *reconciler.Report) reportDoc {
	doc := reportDoc{RunID: report.RunID, Failed: report.Failed()}
	for _, s := range report.Stages {
		rs := reportStage{
			Name:    s.Name,
			Created: s.Created,
			Updated: s.Updated,
			Deleted: s.Deleted,
			Skipped: s.Skipped,
			Failed:  s.Failed,
			Metrics: s.Metrics,
		}
		if s.Err != nil {
			rs.Error = s.Err.Error()
		}
		doc.Stages = append(doc.Stages, rs)
	}
	return doc
}
