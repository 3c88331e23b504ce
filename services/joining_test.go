package services_test

import (
	"aims/models"
	"aims/services"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDraft_Standalone(t *testing.T) {
	db := newTestDB(t)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	assert.Equal(t, models.JoiningStatusDraft, joining.Status)
	assert.Nil(t, joining.LeadID)
	assert.Equal(t, "Asha", joining.Student.Name)
	assert.Equal(t, models.PaymentSummaryNotStarted, joining.PaymentStatus)
}

func TestCreateDraft_RequiresConfirmedLead(t *testing.T) {
	db := newTestDB(t)

	lead := models.Lead{Name: "Ravi", LeadStatus: models.LeadStatusFollowUp}
	require.NoError(t, db.Create(&lead).Error)

	in := draftInput("Ravi")
	in.LeadID = &lead.ID
	_, err := services.CreateDraft(db, in)

	var stateErr *services.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "lead", stateErr.Entity)

	// Confirmed lead passes the gate
	require.NoError(t, db.Model(&lead).Update("lead_status", models.LeadStatusConfirmed).Error)
	joining, err := services.CreateDraft(db, in)
	require.NoError(t, err)
	require.NotNil(t, joining.LeadID)
	assert.Equal(t, lead.ID, *joining.LeadID)
}

func TestCreateDraft_UnknownLead(t *testing.T) {
	db := newTestDB(t)

	in := draftInput("Nobody")
	in.LeadID = uintPtr(999)
	_, err := services.CreateDraft(db, in)

	var notFound *services.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "lead", notFound.Entity)
}

func TestUpdateDraft_PatchesSections(t *testing.T) {
	db := newTestDB(t)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	updated, err := services.UpdateDraft(db, joining.ID, &services.JoiningInput{
		Address: &models.AddressInfo{City: "Hyderabad", State: "Telangana", PinCode: "500001"},
	})
	require.NoError(t, err)

	// Untouched sections survive a partial update
	assert.Equal(t, "Asha", updated.Student.Name)
	assert.Equal(t, "Hyderabad", updated.Address.Data().City)
}

func TestUpdateDraft_FrozenAfterSubmit(t *testing.T) {
	db := newTestDB(t)

	joining := newPendingJoining(t, db, "Asha")

	_, err := services.UpdateDraft(db, joining.ID, &services.JoiningInput{
		Student: &models.StudentInfo{Name: "Someone Else"},
	})

	var stateErr *services.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, string(models.JoiningStatusPendingApproval), stateErr.Current)
}

func TestSubmit_MissingMandatoryFields(t *testing.T) {
	db := newTestDB(t)

	joining, err := services.CreateDraft(db, &services.JoiningInput{
		Course: &models.CourseInfo{Course: "B.Tech", Branch: "CSE"},
	})
	require.NoError(t, err)

	_, err = services.SubmitForApproval(db, joining.ID, 7)

	var valErr *services.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields, "studentInfo.name")

	// Status must stay DRAFT after a failed submit
	reloaded, err := services.GetJoining(db, joining.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JoiningStatusDraft, reloaded.Status)
}

func TestSubmit_SetsAudit(t *testing.T) {
	db := newTestDB(t)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	submitted, err := services.SubmitForApproval(db, joining.ID, 42)
	require.NoError(t, err)

	assert.Equal(t, models.JoiningStatusPendingApproval, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, uint(42), submitted.SubmittedBy)
}

func TestSubmit_OnlyFromDraft(t *testing.T) {
	db := newTestDB(t)

	joining := newPendingJoining(t, db, "Asha")

	_, err := services.SubmitForApproval(db, joining.ID, 7)
	var stateErr *services.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}

func TestReject_ReturnsToDraft(t *testing.T) {
	db := newTestDB(t)

	joining := newPendingJoining(t, db, "Asha")

	rejected, err := services.Reject(db, joining.ID, "address proof missing")
	require.NoError(t, err)

	assert.Equal(t, models.JoiningStatusDraft, rejected.Status)
	assert.Equal(t, "address proof missing", rejected.RejectReason)

	// The voided submission's stamps survive for audit
	require.NotNil(t, rejected.SubmittedAt)
	assert.Equal(t, uint(7), rejected.SubmittedBy)

	// Corrected draft can go around again, re-stamped by the new submitter
	resubmitted, err := services.SubmitForApproval(db, joining.ID, 11)
	require.NoError(t, err)
	assert.Equal(t, models.JoiningStatusPendingApproval, resubmitted.Status)
	assert.Equal(t, uint(11), resubmitted.SubmittedBy)
}

func TestReject_OnlyFromPendingApproval(t *testing.T) {
	db := newTestDB(t)

	joining, err := services.CreateDraft(db, draftInput("Asha"))
	require.NoError(t, err)

	_, err = services.Reject(db, joining.ID, "nope")
	var stateErr *services.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, string(models.JoiningStatusDraft), stateErr.Current)
}

func TestGetJoining_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := services.GetJoining(db, 12345)
	var notFound *services.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

// The lifecycle only ever walks DRAFT→PENDING_APPROVAL→APPROVED with the one
// backward edge PENDING_APPROVAL→DRAFT; every other requested transition is
// rejected, never coerced.
func TestLifecycle_NoOtherTransitions(t *testing.T) {
	db := newTestDB(t)

	joining := newPendingJoining(t, db, "Asha")
	_, _, _, err := services.Approve(db, joining.ID, 9)
	require.NoError(t, err)

	var stateErr *services.InvalidStateError

	_, err = services.SubmitForApproval(db, joining.ID, 7)
	assert.ErrorAs(t, err, &stateErr)

	_, err = services.Reject(db, joining.ID, "too late")
	assert.ErrorAs(t, err, &stateErr)

	_, err = services.UpdateDraft(db, joining.ID, &services.JoiningInput{
		Student: &models.StudentInfo{Name: "X"},
	})
	assert.ErrorAs(t, err, &stateErr)
}
