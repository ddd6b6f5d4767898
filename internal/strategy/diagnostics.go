package strategy

import "go.uber.org/zap"

// Kind classifies a diagnostic.
type Kind string

const (
	// KindKeyCollision marks a merge where two sources produced the same
	// column; the later writer won.
	KindKeyCollision Kind = "key_collision"
	// KindOverrideIgnored marks a caller override on a column whose value is
	// dictated by foreign-key resolution.
	KindOverrideIgnored Kind = "override_ignored"
	// KindJoinTruncated marks a foreign-key candidate set that was sampled
	// down to its cap.
	KindJoinTruncated Kind = "join_truncated"
	// KindUnderMinimum marks a table that ran out of attempts before reaching
	// its minimum row count.
	KindUnderMinimum Kind = "under_minimum"
	// KindUnsatisfiableFK marks a table generated empty because its foreign
	// keys admit no legal value combination.
	KindUnsatisfiableFK Kind = "unsatisfiable_fk"
)

// Diagnostic is one non-fatal observation from a generation run.
type Diagnostic struct {
	Kind    Kind
	Table   string
	Columns []string
	Message string
}

// Diagnostics collects diagnostics and mirrors each one to the logger as it
// arrives.
type Diagnostics struct {
	logger  *zap.Logger
	entries []Diagnostic
}

func NewDiagnostics(logger *zap.Logger) *Diagnostics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Diagnostics{logger: logger}
}

// Add records d and logs it at warn level.
func (ds *Diagnostics) Add(d Diagnostic) {
	ds.entries = append(ds.entries, d)
	ds.logger.Warn(d.Message,
		zap.String("kind", string(d.Kind)),
		zap.String("table", d.Table),
		zap.Strings("columns", d.Columns),
	)
}

// Entries returns every diagnostic recorded so far, in arrival order.
func (ds *Diagnostics) Entries() []Diagnostic {
	return ds.entries
}
