// Package query turns catalogue filters into a boolean query tree and
// serializes it to Lucene syntax for the search index.
package query

// Clause is one AND-ed condition of a Query.
type Clause interface {
	clause()
}

// Text matches free text against the index's catch-all text field. An empty
// Term matches every document.
type Text struct {
	Term string
}

// Term is an exact match of Field against Value.
type Term struct {
	Field string
	Value string
}

// AnyOf matches when Field equals any of Values.
type AnyOf struct {
	Field  string
	Values []string
}

// Range bounds Field inclusively; a nil bound leaves that side open.
type Range struct {
	Field string
	Lower *float64
	Upper *float64
}

func (Text) clause()  {}
func (Term) clause()  {}
func (AnyOf) clause() {}
func (Range) clause() {}

// Query is the AND of its clauses. MatchNone short-circuits it to an empty
// result without consulting the index.
type Query struct {
	Clauses   []Clause
	MatchNone bool
}

// String serializes the query to Lucene syntax.
func (q Query) String() string {
	return Serialize(q.Clauses)
}

// Sort orders results by Field.
type Sort struct {
	Field string
	Desc  bool
}

// Page locates a result window.
type Page struct {
	Number  int
	Start   int
	PerPage int
}

// Plan is a built query plus the directives the gateway needs.
type Plan struct {
	Query  Query
	Page   Page
	Sort   *Sort
	Params map[string]string
}
