package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// ScoringMode names the score function used for ranking.
	ScoringMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string

	// AuthorKey selects which parts of a commit signature form the author identity.
	AuthorKey string
)

// All output modes supported.
const (
	JSONOut    OutputMode = "json" // default
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text"
	ParquetOut OutputMode = "parquet"
)

// All scoring modes supported.
const (
	ProductMode  ScoringMode = "product" // default
	WeightedMode ScoringMode = "weighted"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All author identity keys supported.
const (
	AuthorName      AuthorKey = "name"
	AuthorEmail     AuthorKey = "email"
	AuthorNameEmail AuthorKey = "name-email" // default
)

// AllScoringModes returns a list of all supported scoring modes.
var AllScoringModes = []ScoringMode{ProductMode, WeightedMode}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	JSONOut:    {},
	CSVOut:     {},
	TextOut:    {},
	ParquetOut: {},
}

// ValidScoringModes lists all valid scoring modes.
var ValidScoringModes = map[ScoringMode]struct{}{
	ProductMode:  {},
	WeightedMode: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidAuthorKeys lists all valid author identity keys.
var ValidAuthorKeys = map[AuthorKey]struct{}{
	AuthorName:      {},
	AuthorEmail:     {},
	AuthorNameEmail: {},
}
