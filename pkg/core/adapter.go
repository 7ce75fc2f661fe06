package core

// AdapterConfig holds configuration for connecting to a database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	// Params holds adapter-specific settings decoded by the adapter itself.
	Params map[string]any
}

// FetchShape selects the in-memory structure requested for each fetched row.
type FetchShape int

const (
	// FetchAssoc keys every value by its result column name (default).
	FetchAssoc FetchShape = iota
	// FetchNum keys every value by its zero-based column position ("0", "1", ...).
	FetchNum
)

// String returns the configuration name of the shape.
func (s FetchShape) String() string {
	switch s {
	case FetchNum:
		return "num"
	default:
		return "assoc"
	}
}

// UnmarshalText decodes a shape from its configuration name.
func (s *FetchShape) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "assoc":
		*s = FetchAssoc
	case "num":
		*s = FetchNum
	default:
		return &UnknownValueError{Kind: "fetch shape", Value: string(text)}
	}
	return nil
}

// ErrorClass classifies a driver failure so callers can decide on recovery.
type ErrorClass int

const (
	// ErrorClassOther is any failure without a dedicated recovery path.
	ErrorClassOther ErrorClass = iota
	// ErrorClassSchemaMissing means the addressed relation does not exist.
	ErrorClassSchemaMissing
)

// String returns the name of the class.
func (c ErrorClass) String() string {
	if c == ErrorClassSchemaMissing {
		return "schema_missing"
	}
	return "other"
}

// StatementKind identifies which statement builder produced a statement.
type StatementKind int

const (
	StatementSelect StatementKind = iota
	StatementInsert
	StatementUpdate
	StatementDelete
)

// String returns the SQL verb for the kind.
func (k StatementKind) String() string {
	switch k {
	case StatementInsert:
		return "INSERT"
	case StatementUpdate:
		return "UPDATE"
	case StatementDelete:
		return "DELETE"
	default:
		return "SELECT"
	}
}

// ReturnsRows reports whether statements of this kind produce a result set.
func (k StatementKind) ReturnsRows() bool {
	return k == StatementSelect
}

// UnknownValueError is returned when a configuration string does not name a known value.
type UnknownValueError struct {
	Kind  string
	Value string
}

func (e *UnknownValueError) Error() string {
	return "unknown " + e.Kind + " " + `"` + e.Value + `"`
}
