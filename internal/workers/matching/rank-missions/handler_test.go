// internal/workers/matching/rank-missions/handler_test.go
package rankmissions

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"volunteer-match-workers/internal/common/logger"
	"volunteer-match-workers/internal/matching"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		MaxItems: 50,
		CacheTTL: 10 * time.Minute,
		Timeout:  10 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func createTestProfile() *matching.MemberProfile {
	fullDay := matching.TimeFullDay
	influence := matching.PersonalityInfluence
	return &matching.MemberProfile{
		ID:                 "member-123",
		Name:               "Amira",
		Specialties:        []string{"First Aid", "Event Planning"},
		AvailabilityDays:   []string{"Saturday", "Sunday"},
		AvailabilityTime:   &fullDay,
		PersonalityType:    &influence,
		PreferredCommittee: "Community Outreach",
		EngagementPoints:   500,
		EngagementIndex:    50,
	}
}

func perfectMission() matching.Mission {
	morning := matching.TimeMorning
	return matching.Mission{
		ID:             "mission-perfect",
		Title:          "Community Health Drive",
		RequiredSkills: []string{"first aid", "event planning"},
		PersonalityFit: []matching.PersonalityType{matching.PersonalityInfluence},
		ScheduleDays:   []string{"saturday", "sunday"},
		ScheduleTime:   &morning,
		Category:       "Community Outreach",
	}
}

func openMission(id string) matching.Mission {
	return matching.Mission{ID: id, Title: "Open Call"}
}

func mismatchMission() matching.Mission {
	afternoon := matching.TimeAfternoon
	return matching.Mission{
		ID:             "mission-mismatch",
		Title:          "Quarterly Audit Support",
		RequiredSkills: []string{"accounting"},
		PersonalityFit: []matching.PersonalityType{matching.PersonalityDominant},
		ScheduleDays:   []string{"monday"},
		ScheduleTime:   &afternoon,
		Category:       "Finance",
	}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SortsDescending(t *testing.T) {
	db, _ := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, setupRedis(t), newTestLogger(t))

	input := &Input{
		MemberID:      "member-123",
		MemberProfile: createTestProfile(),
		Missions:      []matching.Mission{mismatchMission(), openMission("mission-open"), perfectMission()},
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, output.RankedMissions, 3)
	assert.Equal(t, "mission-perfect", output.RankedMissions[0].MissionID)
	assert.Equal(t, "mission-open", output.RankedMissions[1].MissionID)
	assert.Equal(t, "mission-mismatch", output.RankedMissions[2].MissionID)
	for i := 1; i < len(output.RankedMissions); i++ {
		assert.GreaterOrEqual(t,
			output.RankedMissions[i-1].MatchScore,
			output.RankedMissions[i].MatchScore)
	}
}

func TestHandler_Execute_StableForEqualScores(t *testing.T) {
	db, _ := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, setupRedis(t), newTestLogger(t))

	input := &Input{
		MemberProfile: createTestProfile(),
		Missions:      []matching.Mission{openMission("first"), openMission("second"), openMission("third")},
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, output.RankedMissions, 3)
	assert.Equal(t, "first", output.RankedMissions[0].MissionID)
	assert.Equal(t, "second", output.RankedMissions[1].MissionID)
	assert.Equal(t, "third", output.RankedMissions[2].MissionID)
}

func TestHandler_Execute_DeduplicatesMissions(t *testing.T) {
	db, _ := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, setupRedis(t), newTestLogger(t))

	input := &Input{
		MemberProfile: createTestProfile(),
		Missions:      []matching.Mission{perfectMission(), perfectMission(), mismatchMission()},
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, output.RankedMissions, 2)
}

func TestHandler_Execute_TruncatesToMaxItems(t *testing.T) {
	db, _ := setupMockDB(t)
	config := createTestConfig()
	config.MaxItems = 2
	handler := NewHandler(config, db, setupRedis(t), newTestLogger(t))

	input := &Input{
		MemberProfile: createTestProfile(),
		Missions: []matching.Mission{
			mismatchMission(), openMission("mission-open"), perfectMission(),
		},
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, output.RankedMissions, 2)
	assert.Equal(t, "mission-perfect", output.RankedMissions[0].MissionID)
}

func TestHandler_Execute_FetchesActiveMissions(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, setupRedis(t), newTestLogger(t))

	skills, _ := json.Marshal([]string{"first aid"})
	fit, _ := json.Marshal([]string{})
	days, _ := json.Marshal([]string{"saturday"})

	mock.ExpectQuery("SELECT id, title, required_skills").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "required_skills", "personality_fit", "schedule_days", "schedule_time", "category",
		}).
			AddRow("mission-a", "Blood Donation Day", skills, fit, days, "morning", "Health").
			AddRow("mission-b", "Open Call", []byte("[]"), fit, []byte("[]"), nil, ""))

	input := &Input{
		MemberID:      "member-123",
		MemberProfile: createTestProfile(),
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, output.RankedMissions, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NilInput(t *testing.T) {
	db, _ := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, setupRedis(t), newTestLogger(t))

	output, err := handler.Execute(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNilInput)
	assert.Nil(t, output)
}
