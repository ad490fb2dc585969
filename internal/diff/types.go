package diff

// Operation is the action required to bring one entity in sync.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// Change is one field-level delta within an UPDATE result.
type Change struct {
	Field       string      `json:"field"`
	Current     interface{} `json:"currentValue"`
	Desired     interface{} `json:"desiredValue"`
	Description string      `json:"description,omitempty"`
}

// Result describes one entity instance requiring action. Entities with no
// delta produce no Result; absence means "in sync".
//
// CREATE results carry only the desired snapshot, DELETE results only the
// current snapshot, UPDATE results both plus one Change per differing field.
type Result struct {
	Operation  Operation   `json:"operation"`
	EntityType string      `json:"entityType"`
	EntityName string      `json:"entityName"`
	Current    interface{} `json:"current,omitempty"`
	Desired    interface{} `json:"desired,omitempty"`
	Changes    []Change    `json:"changes,omitempty"`
}

// Summary aggregates diff results. The counters are always derived from
// Results via Summarize, never computed independently, so
// TotalChanges == Creates+Updates+Deletes == len(Results) holds by
// construction.
type Summary struct {
	TotalChanges int      `json:"totalChanges"`
	Creates      int      `json:"creates"`
	Updates      int      `json:"updates"`
	Deletes      int      `json:"deletes"`
	Results      []Result `json:"results"`
}

// Summarize derives a Summary from an ordered result list.
func Summarize(results []Result) Summary {
	s := Summary{Results: results, TotalChanges: len(results)}
	for _, r := range results {
		switch r.Operation {
		case OperationCreate:
			s.Creates++
		case OperationUpdate:
			s.Updates++
		case OperationDelete:
			s.Deletes++
		}
	}
	return s
}

// InSync reports whether the diff found nothing to do.
func (s Summary) InSync() bool {
	return s.TotalChanges == 0
}
