package service

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "labassign/pkg/errors"
)

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, ""},
		{ErrAlreadyPaired, OutcomeAlreadyPaired},
		{ErrTargetUnavailable, OutcomeTargetUnavailable},
		{ErrSelfPair, OutcomeSelfPair},
		{ErrNotPairMember, OutcomeNotAMember},
		{ErrPairNotFound, OutcomeNotFound},
		{ErrCannotJoin, OutcomeCannotJoin},
		{ErrFullForPartner, OutcomeFullForPartner},
		{ErrGroupFull, OutcomeFull},
		{ErrGroupNotFound, OutcomeGroupNotFound},
		{ErrStudentNotFound, OutcomeStudentNotFound},
		{ErrSelectionNotOpen, OutcomeSelectionNotOpen},
		{ErrPairChanged, OutcomeConflict},
		{fmt.Errorf("包装: %w", ErrCannotJoin), OutcomeCannotJoin},
		{pkgerrors.ErrAssignmentConflict, OutcomeError},
		{errors.New("connection reset"), OutcomeError},
	}
	for _, tt := range tests {
		if got := OutcomeOf(tt.err); got != tt.want {
			t.Errorf("OutcomeOf(%v) = %q，期望 %q", tt.err, got, tt.want)
		}
	}
}
