package domain

import (
	"errors"
	"fmt"
)

// Base error kinds. Every domain error wraps exactly one of these so the HTTP
// layer can map it to a status code with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Validation errors
var (
	ErrNameRequired           = fmt.Errorf("%w: name is required", ErrValidation)
	ErrInvalidAmount          = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrInvalidRole            = fmt.Errorf("%w: invalid role", ErrValidation)
	ErrInvalidPlan            = fmt.Errorf("%w: invalid subscription plan", ErrValidation)
	ErrInvalidSwipeAction     = fmt.Errorf("%w: action must be interested or passed", ErrValidation)
	ErrInvalidTaskStatus      = fmt.Errorf("%w: invalid task status", ErrValidation)
	ErrInvalidTaskPriority    = fmt.Errorf("%w: invalid task priority", ErrValidation)
	ErrInvalidMilestoneStatus = fmt.Errorf("%w: invalid milestone status", ErrValidation)
	ErrFounderSelfRemoval     = fmt.Errorf("%w: the founder cannot be removed", ErrValidation)
	ErrFounderRoleChange      = fmt.Errorf("%w: the founder role cannot be changed", ErrValidation)
	ErrTeamLimitReached       = fmt.Errorf("%w: team limit reached for current plan", ErrValidation)
)

// Not-found errors
var (
	ErrWorkspaceNotFound  = fmt.Errorf("%w: workspace", ErrNotFound)
	ErrInviteCodeNotFound = fmt.Errorf("%w: invite code", ErrNotFound)
	ErrProfileNotFound    = fmt.Errorf("%w: profile", ErrNotFound)
	ErrMemberNotFound     = fmt.Errorf("%w: member", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("%w: task", ErrNotFound)
	ErrMilestoneNotFound  = fmt.Errorf("%w: milestone", ErrNotFound)
	ErrEntryNotFound      = fmt.Errorf("%w: ledger entry", ErrNotFound)
)

// Conflict errors
var (
	ErrAlreadyMember = fmt.Errorf("%w: already a member of this workspace", ErrConflict)
)

// Forbidden errors. The message stays generic on the wire; these exist so
// services and tests can distinguish denial causes internally.
var (
	ErrNotMember        = fmt.Errorf("%w: not a member of this workspace", ErrForbidden)
	ErrInvestorRequired = fmt.Errorf("%w: investor designation required", ErrForbidden)
)
