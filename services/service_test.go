package services_test

import (
	"aims/models"
	"aims/services"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema. A single
// connection keeps sqlite happy under the concurrency tests while still
// exercising the same guarded updates that run against Postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Lead{},
		&models.Joining{},
		&models.Admission{},
		&models.NumberSequence{},
		&models.FeeStructure{},
		&models.PaymentTransaction{},
	))
	require.NoError(t, db.Create(&models.NumberSequence{
		Name: models.SequenceAdmissionNumber,
	}).Error)

	return db
}

func seedFee(t *testing.T, db *gorm.DB, course, branch, quota string, totalFee float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.FeeStructure{
		Course:   course,
		Branch:   branch,
		Quota:    quota,
		TotalFee: totalFee,
	}).Error)
}

// draftInput builds a complete-enough joining payload for the given student.
func draftInput(name string) *services.JoiningInput {
	return &services.JoiningInput{
		Student: &models.StudentInfo{
			Name:   name,
			Email:  name + "@example.com",
			Mobile: "9876543210",
		},
		Course: &models.CourseInfo{
			Course:       "B.Tech",
			Branch:       "CSE",
			Quota:        "MGMT",
			AcademicYear: "2026-27",
		},
	}
}

// newPendingJoining creates a draft and submits it for approval.
func newPendingJoining(t *testing.T, db *gorm.DB, name string) *models.Joining {
	t.Helper()
	joining, err := services.CreateDraft(db, draftInput(name))
	require.NoError(t, err)
	joining, err = services.SubmitForApproval(db, joining.ID, 7)
	require.NoError(t, err)
	require.Equal(t, models.JoiningStatusPendingApproval, joining.Status)
	return joining
}

func cashPayment(entityJoining, entityAdmission *uint, amount float64) *services.RecordTransactionInput {
	return &services.RecordTransactionInput{
		JoiningID:   entityJoining,
		AdmissionID: entityAdmission,
		Amount:      amount,
		Mode:        models.PaymentModeCash,
		CollectedBy: 7,
		Succeeded:   true,
	}
}

func uintPtr(v uint) *uint { return &v }
