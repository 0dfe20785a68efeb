package search

import "github.com/subseek/subseek/internal/store"

// Relative clause boosts for wide mode, descending so tighter matches
// always outrank looser ones within one result set.
const (
	boostExactPhrase  = 10.0
	boostSloppyPhrase = 6.0
	boostAllTerms     = 4.0
	boostFuzzyTerms   = 2.0
	boostAnyTerms     = 1.0
)

// captionTextFields are the raw and stemmed caption text fields every
// planner clause searches.
var captionTextFields = []string{store.FieldText, store.FieldTextStemmed}

// buildClause turns a query string and options into the boolean clause
// that both the aggregation and the per-video fetch reuse, so ranking and
// highlighting stay consistent. Callers reject empty queries before
// planning.
func buildClause(query string, opts *Options, cfg Config) store.Clause {
	if opts.Mode == ModeWide {
		return wideClause(query, opts, cfg)
	}
	return naturalClause(query)
}

// naturalClause is a literal phrase search with light morphological
// tolerance: the exact phrase on the raw text field OR'd with the exact
// phrase on its stemmed variant, zero slop.
func naturalClause(query string) store.Clause {
	return &store.PhraseClause{
		Fields: captionTextFields,
		Phrase: query,
	}
}

// wideClause trades precision for recall: five alternatives with
// descending boosts, from the exact phrase down to a fuzzy any-terms net.
func wideClause(query string, opts *Options, cfg Config) store.Clause {
	fuzziness := opts.FuzzyDistance
	if fuzziness == "" {
		fuzziness = cfg.Fuzziness
	}

	return &store.BoolClause{
		Should: []store.Clause{
			&store.PhraseClause{
				Fields: captionTextFields,
				Phrase: query,
				Boost:  boostExactPhrase,
			},
			&store.PhraseClause{
				Fields: captionTextFields,
				Phrase: query,
				Slop:   cfg.Slop,
				Boost:  boostSloppyPhrase,
			},
			&store.MatchClause{
				Fields:   captionTextFields,
				Query:    query,
				Operator: store.OperatorAnd,
				Boost:    boostAllTerms,
			},
			&store.MatchClause{
				Fields:    captionTextFields,
				Query:     query,
				Operator:  store.OperatorAnd,
				Fuzziness: fuzziness,
				Boost:     boostFuzzyTerms,
			},
			&store.MatchClause{
				Fields:             captionTextFields,
				Query:              query,
				Operator:           store.OperatorOr,
				Fuzziness:          fuzziness,
				MinimumShouldMatch: cfg.MinShouldMatch,
				Boost:              boostAnyTerms,
			},
		},
		MinimumShouldMatch: "1",
	}
}
