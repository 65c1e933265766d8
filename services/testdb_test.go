package services

import (
	"testing"
	"time"

	"certificados/database"
	"certificados/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the production schema.
// A single connection keeps sqlite serializable under the concurrency tests
// while still exercising the unique-constraint race handling.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedSession(t *testing.T, db *gorm.DB, hours *uint) *models.CourseSession {
	t.Helper()

	course := models.Course{
		Name:          "Lean Six Sigma",
		Description:   "Green Belt",
		StandardHours: hours,
	}
	require.NoError(t, db.Create(&course).Error)

	session := models.CourseSession{
		CourseID: course.ID,
		Date:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&session).Error)
	session.Course = course
	return &session
}

func seedParticipant(t *testing.T, db *gorm.DB, cpf string) *models.Participant {
	t.Helper()

	participant := models.Participant{
		CPF:       cpf,
		Name:      "Ana Silva",
		Email:     "ana.silva@example.com",
		BirthDate: time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&participant).Error)
	return &participant
}

func uintPtr(v uint) *uint { return &v }
