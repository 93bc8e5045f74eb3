// internal/workers/matching/compute-match-score/handler.go
package computematchscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"volunteer-match-workers/internal/common/logger"
	"volunteer-match-workers/internal/matching"
	"volunteer-match-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "compute-match-score"
)

var (
	ErrMissionRequired = errors.New("MISSION_REQUIRED")
	ErrMissionNotFound = errors.New("MISSION_NOT_FOUND")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	engine *matching.Engine
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		engine: matching.NewEngine(),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "MATCH_SCORE_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	mission, err := h.resolveMission(ctx, input)
	if err != nil {
		return nil, err
	}

	member := h.resolveMember(ctx, input)

	result := h.engine.ComputeMatchScore(member, mission)
	tip := h.engine.TopImprovementTip(result.Breakdown)

	h.logger.Info("match score computed", map[string]interface{}{
		"memberId":  member.ID,
		"missionId": mission.ID,
		"score":     result.Score,
		"grade":     result.Grade,
	})

	return &Output{
		MatchScore:     result.Score,
		MatchGrade:     result.Grade,
		ScoreBreakdown: result.Breakdown,
		ImprovementTip: tip,
	}, nil
}

// resolveMember prefers an inline profile, falls back to the database, and
// degrades to an empty profile when the fetch fails. Scoring an empty profile
// still produces a valid result through the incomplete-profile credits.
func (h *Handler) resolveMember(ctx context.Context, input *Input) matching.MemberProfile {
	if input.MemberProfile != nil {
		return *input.MemberProfile
	}
	if input.MemberID == "" {
		return matching.MemberProfile{}
	}

	profile, err := h.getMemberProfile(ctx, input.MemberID)
	if err != nil {
		h.logger.Warn("failed to fetch member profile", map[string]interface{}{
			"memberId": input.MemberID,
			"error":    err,
		})
		return matching.MemberProfile{ID: input.MemberID}
	}
	return *profile
}

// resolveMission prefers inline mission data and falls back to the database.
// Unlike the member side there is no degraded mode: a score without a mission
// is meaningless.
func (h *Handler) resolveMission(ctx context.Context, input *Input) (matching.Mission, error) {
	if input.MissionData != nil {
		return *input.MissionData, nil
	}
	if input.MissionID == "" {
		return matching.Mission{}, ErrMissionRequired
	}

	mission, err := h.getMission(ctx, input.MissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return matching.Mission{}, ErrMissionNotFound
		}
		return matching.Mission{}, err
	}
	return *mission, nil
}

func (h *Handler) getMemberProfile(ctx context.Context, memberID string) (*matching.MemberProfile, error) {
	cacheKey := "member:profile:" + memberID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile matching.MemberProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT name, specialties, job_title, availability_days, availability_time,
		       personality_type, preferred_committee, preferred_activity_type,
		       engagement_points, engagement_index
		FROM members WHERE id = $1`, memberID)

	record := models.MemberRecord{ID: memberID}
	var specialties, availabilityDays []byte
	var availabilityTime, personalityType sql.NullString
	err := row.Scan(&record.Name, &specialties, &record.JobTitle, &availabilityDays,
		&availabilityTime, &personalityType, &record.PreferredCommittee,
		&record.PreferredActivityType, &record.EngagementPoints, &record.EngagementIndex)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(specialties, &record.Specialties); err != nil {
		record.Specialties = []string{}
	}
	if err := json.Unmarshal(availabilityDays, &record.AvailabilityDays); err != nil {
		record.AvailabilityDays = []string{}
	}
	if availabilityTime.Valid {
		record.AvailabilityTime = &availabilityTime.String
	}
	if personalityType.Valid {
		record.PersonalityType = &personalityType.String
	}

	profile := record.ToProfile()
	data, _ := json.Marshal(profile)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &profile, nil
}

func (h *Handler) getMission(ctx context.Context, missionID string) (*matching.Mission, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT title, required_skills, personality_fit, schedule_days, schedule_time, category
		FROM missions WHERE id = $1`, missionID)

	record := models.MissionRecord{ID: missionID}
	var requiredSkills, personalityFit, scheduleDays []byte
	var scheduleTime sql.NullString
	err := row.Scan(&record.Title, &requiredSkills, &personalityFit, &scheduleDays,
		&scheduleTime, &record.Category)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(requiredSkills, &record.RequiredSkills); err != nil {
		record.RequiredSkills = []string{}
	}
	if err := json.Unmarshal(personalityFit, &record.PersonalityFit); err != nil {
		record.PersonalityFit = []string{}
	}
	if err := json.Unmarshal(scheduleDays, &record.ScheduleDays); err != nil {
		record.ScheduleDays = []string{}
	}
	if scheduleTime.Valid {
		record.ScheduleTime = &scheduleTime.String
	}

	mission := record.ToMission()
	return &mission, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
