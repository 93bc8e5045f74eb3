// internal/workers/matching/compute-match-score/handler_test.go
package computematchscore

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

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func createTestMission() *matching.Mission {
	morning := matching.TimeMorning
	return &matching.Mission{
		ID:             "mission-123",
		Title:          "Community Health Drive",
		RequiredSkills: []string{"first aid", "event planning"},
		PersonalityFit: []matching.PersonalityType{matching.PersonalityInfluence},
		ScheduleDays:   []string{"saturday", "sunday"},
		ScheduleTime:   &morning,
		Category:       "Community Outreach",
	}
}

func createTestProfile() *matching.MemberProfile {
	fullDay := matching.TimeFullDay
	influence := matching.PersonalityInfluence
	return &matching.MemberProfile{
		ID:                 "member-123",
		Name:               "Amira",
		Specialties:        []string{"First Aid", "Event Planning"},
		JobTitle:           "Nurse",
		AvailabilityDays:   []string{"Saturday", "Sunday"},
		AvailabilityTime:   &fullDay,
		PersonalityType:    &influence,
		PreferredCommittee: "Community Outreach",
		EngagementPoints:   500,
		EngagementIndex:    50,
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

func TestHandler_Execute_WithProvidedProfile(t *testing.T) {
	tests := []struct {
		name           string
		profile        *matching.MemberProfile
		mission        *matching.Mission
		expectedScore  int
		expectedGrade  matching.Grade
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:          "perfect match",
			profile:       createTestProfile(),
			mission:       createTestMission(),
			expectedScore: 100,
			expectedGrade: matching.GradeExcellent,
			validateOutput: func(t *testing.T, output *Output) {
				assert.Len(t, output.ScoreBreakdown, 5)
				assert.Equal(t, 35, output.ScoreBreakdown[0].Points)
				assert.Equal(t, 20, output.ScoreBreakdown[1].Points)
				assert.Equal(t, 15, output.ScoreBreakdown[2].Points)
				assert.Equal(t, 15, output.ScoreBreakdown[3].Points)
				assert.Equal(t, 15, output.ScoreBreakdown[4].Points)
				assert.Equal(t, matching.WellOptimizedMessage, output.ImprovementTip)
			},
		},
		{
			name:          "empty profile against constrained mission",
			profile:       &matching.MemberProfile{ID: "member-456"},
			mission:       createTestMission(),
			expectedScore: 24, // 11 + 3 + 5 + 5 + 0 incomplete-profile credits
			expectedGrade: matching.GradeLow,
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 11, output.ScoreBreakdown[0].Points)
				assert.Equal(t, 3, output.ScoreBreakdown[1].Points)
				assert.Equal(t, 5, output.ScoreBreakdown[2].Points)
				assert.Equal(t, 5, output.ScoreBreakdown[3].Points)
				assert.Equal(t, 0, output.ScoreBreakdown[4].Points)
				assert.NotEqual(t, matching.WellOptimizedMessage, output.ImprovementTip)
			},
		},
		{
			name: "partial skills overlap",
			profile: &matching.MemberProfile{
				ID:               "member-789",
				Specialties:      []string{"First Aid"},
				AvailabilityDays: []string{"Saturday", "Sunday"},
				EngagementPoints: 250,
				EngagementIndex:  25,
			},
			mission: createTestMission(),
			// skills 18 (1 of 2), days 14 + time neutral 3,
			// personality incomplete 5, domain incomplete 5, engagement 8
			expectedScore: 53,
			expectedGrade: matching.GradeFair,
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, []string{"first aid"}, output.ScoreBreakdown[0].MatchedItems)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := setupMockDB(t)
			rdb, _ := setupRedis(t)

			handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

			input := &Input{
				MemberID:      tt.profile.ID,
				MemberProfile: tt.profile,
				MissionData:   tt.mission,
			}

			output, err := handler.Execute(context.Background(), input)

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedScore, output.MatchScore)
			assert.Equal(t, tt.expectedGrade, output.MatchGrade)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestHandler_Execute_FetchMemberProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, _ := setupRedis(t)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	specialties, _ := json.Marshal([]string{"First Aid", "Event Planning"})
	days, _ := json.Marshal([]string{"Saturday", "Sunday"})

	mock.ExpectQuery("SELECT name, specialties").
		WithArgs("member-123").
		WillReturnRows(sqlmock.NewRows([]string{
			"name", "specialties", "job_title", "availability_days", "availability_time",
			"personality_type", "preferred_committee", "preferred_activity_type",
			"engagement_points", "engagement_index",
		}).AddRow("Amira", specialties, "Nurse", days, "full_day",
			"Influence", "Community Outreach", "Field Work", 500, 50.0))

	input := &Input{
		MemberID:    "member-123",
		MissionData: createTestMission(),
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, 100, output.MatchScore)
	assert.Equal(t, matching.GradeExcellent, output.MatchGrade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ProfileFetchFailureDegrades(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, _ := setupRedis(t)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	mock.ExpectQuery("SELECT name, specialties").
		WithArgs("ghost-member").
		WillReturnError(sql.ErrNoRows)

	input := &Input{
		MemberID:    "ghost-member",
		MissionData: createTestMission(),
	}

	output, err := handler.Execute(context.Background(), input)

	// Scoring proceeds on an empty profile rather than failing the job.
	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, 24, output.MatchScore)
	assert.Equal(t, matching.GradeLow, output.MatchGrade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_FetchMission(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, _ := setupRedis(t)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	skills, _ := json.Marshal([]string{"first aid", "event planning"})
	fit, _ := json.Marshal([]string{"Influence"})
	days, _ := json.Marshal([]string{"saturday", "sunday"})

	mock.ExpectQuery("SELECT title, required_skills").
		WithArgs("mission-123").
		WillReturnRows(sqlmock.NewRows([]string{
			"title", "required_skills", "personality_fit", "schedule_days", "schedule_time", "category",
		}).AddRow("Community Health Drive", skills, fit, days, "morning", "Community Outreach"))

	input := &Input{
		MemberID:      "member-123",
		MemberProfile: createTestProfile(),
		MissionID:     "mission-123",
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, 100, output.MatchScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_MissionRequired(t *testing.T) {
	db, _ := setupMockDB(t)
	rdb, _ := setupRedis(t)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	input := &Input{
		MemberID:      "member-123",
		MemberProfile: createTestProfile(),
	}

	output, err := handler.Execute(context.Background(), input)

	assert.ErrorIs(t, err, ErrMissionRequired)
	assert.Nil(t, output)
}

func TestHandler_Execute_MissionNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, _ := setupRedis(t)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	mock.ExpectQuery("SELECT title, required_skills").
		WithArgs("missing-mission").
		WillReturnError(sql.ErrNoRows)

	input := &Input{
		MemberID:      "member-123",
		MemberProfile: createTestProfile(),
		MissionID:     "missing-mission",
	}

	output, err := handler.Execute(context.Background(), input)

	assert.ErrorIs(t, err, ErrMissionNotFound)
	assert.Nil(t, output)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Database & Cache Tests
// ==========================

func TestHandler_GetMemberProfile_CacheHit(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, mr := setupRedis(t)

	cached, _ := json.Marshal(createTestProfile())
	mr.Set("member:profile:member-123", string(cached))

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))
	profile, err := handler.getMemberProfile(context.Background(), "member-123")

	assert.NoError(t, err)
	assert.NotNil(t, profile)
	assert.Equal(t, "Amira", profile.Name)
	assert.Equal(t, []string{"First Aid", "Event Planning"}, profile.Specialties)
	// No DB query should have been issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_GetMemberProfile_CacheFill(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, mr := setupRedis(t)

	specialties, _ := json.Marshal([]string{"Logistics"})
	days, _ := json.Marshal([]string{"Monday"})

	mock.ExpectQuery("SELECT name, specialties").
		WithArgs("member-456").
		WillReturnRows(sqlmock.NewRows([]string{
			"name", "specialties", "job_title", "availability_days", "availability_time",
			"personality_type", "preferred_committee", "preferred_activity_type",
			"engagement_points", "engagement_index",
		}).AddRow("Karim", specialties, "", days, nil, nil, "", "", 120, 14.5))

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))
	profile, err := handler.getMemberProfile(context.Background(), "member-456")

	assert.NoError(t, err)
	assert.NotNil(t, profile)
	assert.Equal(t, "Karim", profile.Name)
	assert.Nil(t, profile.AvailabilityTime)
	assert.Nil(t, profile.PersonalityType)
	assert.True(t, mr.Exists("member:profile:member-456"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
