package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func decision(status DecisionStatus) DepartmentDecision {
	return DepartmentDecision{Status: status}
}

func TestOverallStatusAllApproved(t *testing.T) {
	clearance := ClearanceMap{
		"Finance":   decision(DecisionApproved),
		"Library":   decision(DecisionApproved),
		"Registrar": decision(DecisionApproved),
	}
	assert.Equal(t, DecisionApproved, OverallStatus(clearance))
}

func TestOverallStatusSingleRejectionOverridesApprovals(t *testing.T) {
	clearance := ClearanceMap{
		"Finance":   decision(DecisionApproved),
		"Library":   decision(DecisionRejected),
		"Registrar": decision(DecisionApproved),
	}
	assert.Equal(t, DecisionRejected, OverallStatus(clearance))
}

func TestOverallStatusPendingWhileAnyUndetermined(t *testing.T) {
	clearance := ClearanceMap{
		"Finance":   decision(DecisionApproved),
		"Library":   decision(DecisionPending),
		"Registrar": decision(DecisionApproved),
	}
	assert.Equal(t, DecisionPending, OverallStatus(clearance))
}

func TestOverallStatusRejectionBeatsPending(t *testing.T) {
	clearance := ClearanceMap{
		"Finance": decision(DecisionPending),
		"Library": decision(DecisionRejected),
	}
	assert.Equal(t, DecisionRejected, OverallStatus(clearance))
}

func TestOverallStatusEmptyMapIsPending(t *testing.T) {
	assert.Equal(t, DecisionPending, OverallStatus(ClearanceMap{}))
	assert.Equal(t, DecisionPending, OverallStatus(nil))
}

func TestDecisionStatusValid(t *testing.T) {
	assert.True(t, DecisionPending.Valid())
	assert.True(t, DecisionApproved.Valid())
	assert.True(t, DecisionRejected.Valid())
	assert.False(t, DecisionStatus("approved").Valid())
	assert.False(t, DecisionStatus("Done").Valid())
	assert.False(t, DecisionStatus("").Valid())
}

func TestStudentIDFromRegNo(t *testing.T) {
	assert.Equal(t, "C026-01-0001-2021", StudentIDFromRegNo("C026/01/0001/2021"))
	assert.Equal(t, "plain", StudentIDFromRegNo("plain"))
}

func TestBookingStatusValid(t *testing.T) {
	for _, status := range []BookingStatus{BookingPending, BookingPaid, BookingIssued, BookingReturned, BookingFinePending, BookingCleared} {
		assert.True(t, status.Valid(), string(status))
	}
	assert.False(t, BookingStatus("Paid").Valid())
	assert.False(t, BookingStatus("").Valid())
}
