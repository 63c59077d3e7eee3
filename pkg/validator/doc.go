// Package validator provides composable validation rules.
//
// Each rule pairs a check with the error reported when it fails. Apply runs
// every rule and returns the failures as ValidationErrors, so callers report
// all invalid fields at once:
//
//	err := validator.Apply(
//		validator.RequiredString("make", in.Make),
//		validator.MinNum("year", in.Year, 1886),
//		validator.ValidURLWithScheme("website", site, []string{"http", "https"}),
//	)
//
// ValidationErrors can be joined with a package sentinel; errors.As still
// finds them through the join.
package validator
