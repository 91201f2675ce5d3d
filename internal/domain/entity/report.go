package entity

import "go.uber.org/multierr"

// BatchReport collects per-file results in processing order.
type BatchReport struct {
	SaveDir string
	Files   []*FileResult
}

// Failed returns the files that did not reach StageSaved.
func (r *BatchReport) Failed() []*FileResult {
	var out []*FileResult
	for _, f := range r.Files {
		if !f.OK() {
			out = append(out, f)
		}
	}
	return out
}

// Stems returns the stems of successfully saved files.
func (r *BatchReport) Stems() []string {
	stems := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		if f.OK() {
			stems = append(stems, f.Stem())
		}
	}
	return stems
}

// Err combines the errors of all failed files, nil if none failed.
func (r *BatchReport) Err() error {
	var err error
	for _, f := range r.Failed() {
		err = multierr.Append(err, f.Err)
	}
	return err
}

// MatchResult is the comparison of one result image with its reference.
type MatchResult struct {
	Name          string // <stem>.png
	ResultHash    string
	ReferenceHash string
	Equal         bool
}

// ValidationReport holds per-file matches and the aggregate verdict.
type ValidationReport struct {
	Matches []MatchResult
}

// AllEqual is the logical AND of every per-file result.
func (r *ValidationReport) AllEqual() bool {
	for _, m := range r.Matches {
		if !m.Equal {
			return false
		}
	}
	return true
}

// Mismatched returns the names of files that differ from their reference.
func (r *ValidationReport) Mismatched() []string {
	var names []string
	for _, m := range r.Matches {
		if !m.Equal {
			names = append(names, m.Name)
		}
	}
	return names
}
