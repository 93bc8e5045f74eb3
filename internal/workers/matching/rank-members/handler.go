// internal/workers/matching/rank-members/handler.go
package rankmembers

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
)

const (
	TaskType = "rank-members"
)

var (
	ErrNilInput        = errors.New("input cannot be nil")
	ErrMissionRequired = errors.New("MISSION_REQUIRED")
	ErrMissionNotFound = errors.New("MISSION_NOT_FOUND")
)

type Handler struct {
	config *Config
	db     *sql.DB
	engine *matching.Engine
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
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

	mission, err := h.resolveMission(ctx, input)
	if err != nil {
		return nil, err
	}

	members := input.Members
	if len(members) == 0 {
		fetched, err := h.getActiveMembers(ctx)
		if err != nil {
			return nil, err
		}
		members = fetched
	}

	// Deduplicate by member ID, first occurrence wins so the stable sort
	// keeps input order for equal scores.
	processedIDs := make(map[string]bool)
	unique := make([]matching.MemberProfile, 0, len(members))
	for _, m := range members {
		if m.ID != "" && processedIDs[m.ID] {
			continue
		}
		processedIDs[m.ID] = true
		unique = append(unique, m)
	}

	ranked := h.engine.RankMembers(unique, mission)
	if len(ranked) > h.config.MaxItems {
		ranked = ranked[:h.config.MaxItems]
	}

	out := make([]RankedMember, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, RankedMember{
			MemberID:   r.Member.ID,
			Name:       r.Member.Name,
			MatchScore: r.Result.Score,
			MatchGrade: r.Result.Grade,
		})
	}

	duration := time.Since(start).Milliseconds()
	h.logger.Info("member ranking completed", map[string]interface{}{
		"missionId":   mission.ID,
		"inputCount":  len(members),
		"outputCount": len(out),
		"durationMs":  duration,
	})
	if duration > 500 {
		h.logger.Warn("ranking exceeded 500ms", map[string]interface{}{
			"durationMs": duration,
		})
	}

	return &Output{RankedMembers: out}, nil
}

func (h *Handler) resolveMission(ctx context.Context, input *Input) (matching.Mission, error) {
	if input.MissionData != nil {
		return *input.MissionData, nil
	}
	if input.MissionID == "" {
		return matching.Mission{}, ErrMissionRequired
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT title, required_skills, personality_fit, schedule_days, schedule_time, category
		FROM missions WHERE id = $1`, input.MissionID)

	record := models.MissionRecord{ID: input.MissionID}
	var requiredSkills, personalityFit, scheduleDays []byte
	var scheduleTime sql.NullString
	err := row.Scan(&record.Title, &requiredSkills, &personalityFit, &scheduleDays,
		&scheduleTime, &record.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return matching.Mission{}, ErrMissionNotFound
		}
		return matching.Mission{}, err
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

	return record.ToMission(), nil
}

func (h *Handler) getActiveMembers(ctx context.Context) ([]matching.MemberProfile, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, name, specialties, job_title, availability_days, availability_time,
		       personality_type, preferred_committee, preferred_activity_type,
		       engagement_points, engagement_index
		FROM members WHERE active = true
		LIMIT $1`, h.config.MaxItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []matching.MemberProfile
	for rows.Next() {
		var record models.MemberRecord
		var specialties, availabilityDays []byte
		var availabilityTime, personalityType sql.NullString
		if err := rows.Scan(&record.ID, &record.Name, &specialties, &record.JobTitle,
			&availabilityDays, &availabilityTime, &personalityType, &record.PreferredCommittee,
			&record.PreferredActivityType, &record.EngagementPoints, &record.EngagementIndex); err != nil {
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

		members = append(members, record.ToProfile())
	}
	return members, rows.Err()
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
