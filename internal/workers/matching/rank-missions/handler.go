// internal/workers/matching/rank-missions/handler.go
package rankmissions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"volunteer-match-workers/internal/common/logger"
	"volunteer-match-workers/internal/matching"
	"volunteer-match-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "rank-missions"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
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
		h.failJob(client, job, "RANKING_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	start := time.Now()

	member := h.resolveMember(ctx, input)

	missions := input.Missions
	if len(missions) == 0 {
		fetched, err := h.getActiveMissions(ctx)
		if err != nil {
			return nil, err
		}
		missions = fetched
	}

	// Deduplicate by mission ID, keeping the first occurrence so the stable
	// sort below preserves input order for equal scores.
	processedIDs := make(map[string]bool)
	unique := make([]matching.Mission, 0, len(missions))
	for _, m := range missions {
		if m.ID != "" && processedIDs[m.ID] {
			continue
		}
		processedIDs[m.ID] = true
		unique = append(unique, m)
	}

	ranked := h.engine.RankMissions(member, unique)
	if len(ranked) > h.config.MaxItems {
		ranked = ranked[:h.config.MaxItems]
	}

	out := make([]RankedMission, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, RankedMission{
			MissionID:  r.Mission.ID,
			Title:      r.Mission.Title,
			MatchScore: r.Result.Score,
			MatchGrade: r.Result.Grade,
		})
	}

	duration := time.Since(start).Milliseconds()
	h.logger.Info("mission ranking completed", map[string]interface{}{
		"memberId":    member.ID,
		"inputCount":  len(missions),
		"outputCount": len(out),
		"durationMs":  duration,
	})
	if duration > 500 {
		h.logger.Warn("ranking exceeded 500ms", map[string]interface{}{
			"durationMs": duration,
		})
	}

	return &Output{RankedMissions: out}, nil
}

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

func (h *Handler) getActiveMissions(ctx context.Context) ([]matching.Mission, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, title, required_skills, personality_fit, schedule_days, schedule_time, category
		FROM missions WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT $1`, h.config.MaxItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []matching.Mission
	for rows.Next() {
		var record models.MissionRecord
		var requiredSkills, personalityFit, scheduleDays []byte
		var scheduleTime sql.NullString
		if err := rows.Scan(&record.ID, &record.Title, &requiredSkills, &personalityFit,
			&scheduleDays, &scheduleTime, &record.Category); err != nil {
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

		missions = append(missions, record.ToMission())
	}
	return missions, rows.Err()
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
