package leave

import (
	leaveerrors "nia-hrms/internal/leave/errors"
)

// Status is the workflow state of an application.
type Status string

const (
	StatusPending         Status = "Pending"
	StatusPendingDirector Status = "Pending Director Approval"
	StatusApproved        Status = "Approved"
	StatusRejected        Status = "Rejected"
)

// Action is an approver decision.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// transition is one edge of the approval state machine. Director approval
// finalises from either pre-terminal state; manager approval only forwards
// Pending to the director stage. Rejection is terminal from any
// pre-terminal state regardless of authority.
type transition struct {
	from       Status
	action     Action
	byDirector bool
	to         Status
}

var transitions = []transition{
	{StatusPending, ActionApprove, true, StatusApproved},
	{StatusPendingDirector, ActionApprove, true, StatusApproved},
	{StatusPending, ActionApprove, false, StatusPendingDirector},
	{StatusPending, ActionReject, true, StatusRejected},
	{StatusPending, ActionReject, false, StatusRejected},
	{StatusPendingDirector, ActionReject, true, StatusRejected},
	{StatusPendingDirector, ActionReject, false, StatusRejected},
}

// NextStatus resolves the state machine. A manager approving at the
// director stage, or any action on a terminal state, is an invalid
// transition.
func NextStatus(current Status, action Action, byDirector bool) (Status, error) {
	for _, t := range transitions {
		if t.from == current && t.action == action && t.byDirector == byDirector {
			return t.to, nil
		}
	}
	return current, leaveerrors.ErrInvalidStatusTransition
}

// ParseAction validates the approver action string.
func ParseAction(v string) (Action, error) {
	switch Action(v) {
	case ActionApprove:
		return ActionApprove, nil
	case ActionReject:
		return ActionReject, nil
	default:
		return "", leaveerrors.ErrInvalidAction
	}
}
