package store

// Clause is one node of an engine-neutral boolean query tree. The planner
// builds a Clause once per request; both backends translate it into their
// native query language, so ranking and highlighting stay consistent.
type Clause interface {
	isClause()
}

// MatchOperator selects how the terms of a MatchClause combine.
type MatchOperator string

const (
	OperatorOr  MatchOperator = "or"
	OperatorAnd MatchOperator = "and"
)

// PhraseClause matches the query terms in order. Slop is the allowed
// word-gap tolerance; zero means exact adjacency.
type PhraseClause struct {
	Fields []string
	Phrase string
	Slop   int
	Boost  float64
}

// MatchClause matches analyzed terms over one or more fields.
// Fuzziness is "AUTO" or an edit distance ("0", "1", "2"); empty disables
// fuzzy matching. MinimumShouldMatch (e.g. "75%") applies with OperatorOr.
type MatchClause struct {
	Fields             []string
	Query              string
	Operator           MatchOperator
	Fuzziness          string
	PrefixLength       int
	MaxExpansions      int
	MinimumShouldMatch string
	Boost              float64
}

// TermClause matches a keyword field exactly, unanalyzed.
type TermClause struct {
	Field string
	Value string
}

// RangeClause matches a numeric field within [From, To], inclusive.
type RangeClause struct {
	Field string
	From  float64
	To    float64
}

// BoolClause combines sub-clauses. Filter clauses constrain matching
// without contributing to the score.
type BoolClause struct {
	Must               []Clause
	Should             []Clause
	Filter             []Clause
	MinimumShouldMatch string
}

func (*PhraseClause) isClause() {}
func (*MatchClause) isClause()  {}
func (*TermClause) isClause()   {}
func (*RangeClause) isClause()  {}
func (*BoolClause) isClause()   {}

// HighlightSpec configures per-hit highlighting: caller-supplied markers,
// fragment sizing, and the fallback excerpt size for hits without a
// highlightable span.
type HighlightSpec struct {
	PreTag       string
	PostTag      string
	FragmentSize int
	NoMatchSize  int
	NumFragments int
}
