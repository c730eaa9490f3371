package leads

import (
	"fmt"

	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

// CanTransition reports whether a lead may move from one status to another.
// Closed and lost are final. Any open lead may be marked lost, and open
// leads may move forward or back along the pipeline.
func CanTransition(from, to enums.LeadStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Please select a valid status")
	}
	if from == to {
		return nil
	}
	if from.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("A %s lead cannot change status", from)).
			WithDetails(map[string]any{"from": from, "to": to})
	}
	return nil
}
