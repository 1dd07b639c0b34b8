package mappings

import "context"

// PageChecker reports whether a remote page id still exists. A lookup
// error counts as nonexistent: the consequence is only the removal of a
// local row that a later link operation can recreate.
type PageChecker interface {
	PageExists(ctx context.Context, id int) (bool, error)
}

// MappingRef identifies one mapping in a reconcile report.
type MappingRef struct {
	FilePath string `json:"file_path"`
	PageID   int    `json:"page_id"`
}

// ReconcileReport summarizes one reconciliation sweep.
type ReconcileReport struct {
	Total    int          `json:"total_mappings"`
	Valid    []MappingRef `json:"valid_mappings"`
	Orphaned []MappingRef `json:"orphaned_mappings"`
}

// Reconcile sweeps every stored mapping, verifies each target page
// against the remote store, and deletes rows whose page no longer
// resolves. Pages are checked sequentially in file-path order.
func (s *Store) Reconcile(ctx context.Context, checker PageChecker) (*ReconcileReport, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{
		Total:    len(all),
		Valid:    []MappingRef{},
		Orphaned: []MappingRef{},
	}

	for _, m := range all {
		ref := MappingRef{FilePath: m.FilePath, PageID: m.PageID}

		exists, err := checker.PageExists(ctx, m.PageID)
		if err != nil || !exists {
			if derr := s.DeleteByFile(ctx, m.FilePath); derr != nil {
				return report, derr
			}
			report.Orphaned = append(report.Orphaned, ref)
			continue
		}
		report.Valid = append(report.Valid, ref)
	}

	return report, nil
}
