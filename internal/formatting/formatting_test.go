package formatting

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storesync/internal/config"
	"storesync/internal/diff"
	"storesync/internal/reconciler"
	"storesync/internal/resilience"
)

func samplePlan() *reconciler.Plan {
	return &reconciler.Plan{Stages: []reconciler.StagePlan{
		{
			Name: "channels",
			Results: []diff.Result{
				{
					Operation:  diff.OperationCreate,
					EntityType: "channel",
					EntityName: "UK",
					Desired:    config.Channel{Slug: "uk", Name: "UK", CurrencyCode: "GBP", DefaultCountry: "GB"},
				},
				{
					Operation:  diff.OperationUpdate,
					EntityType: "channel",
					EntityName: "Europe",
					Current:    config.Channel{Slug: "eu", Name: "Old", CurrencyCode: "EUR", DefaultCountry: "DE"},
					Desired:    config.Channel{Slug: "eu", Name: "Europe", CurrencyCode: "EUR", DefaultCountry: "DE"},
					Changes: []diff.Change{
						{
							Field:       "name",
							Current:     "Old",
							Desired:     "Europe",
							Description: `name: "Old" -> "Europe"`,
						},
					},
				},
			},
		},
	}}
}

func TestPrinterPlanJSONGolden(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{Format: FormatJSON})
	require.NoError(t, p.Plan(samplePlan()))

	g := goldie.New(t)
	g.Assert(t, "plan", buf.Bytes())
}

func TestPrinterPlanTable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{Format: FormatTable})
	require.NoError(t, p.Plan(samplePlan()))

	out := buf.String()
	assert.Contains(t, out, "STAGE")
	assert.Contains(t, out, "CREATE")
	assert.Contains(t, out, "UPDATE")
	assert.Contains(t, out, "channels")
	assert.Contains(t, out, `name: "Old" -> "Europe"`)
	assert.Contains(t, out, "1 to create, 1 to update, 0 to delete")
}

func TestPrinterPlanInSync(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})
	require.NoError(t, p.Plan(&reconciler.Plan{}))
	assert.Contains(t, buf.String(), "in sync")

	buf.Reset()
	quiet := NewPrinter(&buf, Options{Quiet: true})
	require.NoError(t, quiet.Plan(&reconciler.Plan{}))
	assert.Empty(t, buf.String())
}

func sampleReport() *reconciler.Report {
	return &reconciler.Report{
		RunID: "3b9f6d1e-0000-4000-8000-000000000000",
		Stages: []reconciler.StageReport{
			{Name: "channels", Created: 1, Updated: 1},
			{
				Name:    "products",
				Created: 2,
				Failed:  1,
				Err:     errors.New("create product \"bad\" failed"),
				Metrics: resilience.StageMetrics{RateLimitHits: 3, RetryAttempts: 2},
			},
		},
	}
}

func TestPrinterReportJSONGolden(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{Format: FormatJSON})
	require.NoError(t, p.Report(sampleReport()))

	g := goldie.New(t)
	g.Assert(t, "report", buf.Bytes())
}

func TestPrinterReportTable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{Format: FormatTable})
	require.NoError(t, p.Report(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "CREATED")
	assert.Contains(t, out, "RATE LIMITS")
	assert.Contains(t, out, "Run 3b9f6d1e")
	assert.Contains(t, out, "Deploy finished with failures.")
	assert.Contains(t, out, `products: create product "bad" failed`)
}

func TestPrinterReportQuietSkipsMetrics(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{Format: FormatTable, Quiet: true})
	require.NoError(t, p.Report(sampleReport()))

	out := buf.String()
	assert.NotContains(t, out, "RATE LIMITS")
	assert.NotContains(t, out, "Run ")
}

func TestPrinterConfigYAML(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})
	active := true
	err := p.Config(&config.StoreConfig{
		Channels: []config.Channel{
			{Slug: "us", Name: "US", CurrencyCode: "USD", DefaultCountry: "US", IsActive: &active},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "channels:")
	assert.Contains(t, out, "slug: us")
	assert.Contains(t, out, "isActive: true")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "table", want: FormatTable},
		{input: "json", want: FormatJSON},
		{input: "yaml", want: FormatYAML},
		{input: "xml", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
