package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gasreport/internal/report"
	"gasreport/pkg/domain"
)

// saveDraft applies d through the wizard and saves the session. The stored
// intervention id goes to stdout; skipped photos are reported on stderr.
func (a *app) saveDraft(cmd *cobra.Command, session *report.Session, d Draft, mode domain.SaveMode) error {
	if err := applyDraft(session, d); err != nil {
		var vf domain.ValidationFailure
		if errors.As(err, &vf) {
			return fmt.Errorf("draft rejected on step %s: %w", vf.Step, err)
		}
		return err
	}
	out, err := session.Save(cmd.Context(), mode)
	if err != nil {
		if out.InterventionID != "" {
			return fmt.Errorf("save of %s incomplete after %d writes: %w", out.InterventionID, out.Writes, err)
		}
		return err
	}
	for _, skipped := range out.SkippedPhotos {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", skipped)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.InterventionID)
	return nil
}
