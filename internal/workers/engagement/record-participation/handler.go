// internal/workers/engagement/record-participation/handler.go
package recordparticipation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"volunteer-match-workers/internal/common/logger"
	"volunteer-match-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "record-participation"
)

var (
	ErrValidationFailed       = errors.New("PARTICIPATION_VALIDATION_FAILED")
	ErrDuplicateParticipation = errors.New("DUPLICATE_PARTICIPATION")
	ErrDatabaseInsertFailed   = errors.New("DATABASE_INSERT_FAILED")
)

// inputSchema guards the participation payload before anything touches the
// database.
var inputSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"memberId", "missionId"},
	"properties": map[string]interface{}{
		"memberId":    map[string]interface{}{"type": "string", "minLength": 1},
		"missionId":   map[string]interface{}{"type": "string", "minLength": 1},
		"role":        map[string]interface{}{"type": "string"},
		"hoursServed": map[string]interface{}{"type": "number", "minimum": 0},
	},
}

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrValidationFailed):
			errorCode = "PARTICIPATION_VALIDATION_FAILED"
		case errors.Is(err, ErrDuplicateParticipation):
			errorCode = "DUPLICATE_PARTICIPATION"
		case errors.Is(err, ErrDatabaseInsertFailed):
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := h.validate(input); err != nil {
		return nil, err
	}

	// Duplicate check: one recorded participation per member and mission.
	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM participations
			WHERE member_id = $1 AND mission_id = $2 AND status = $3
		)`, input.MemberID, input.MissionID, models.ParticipationStatusRecorded).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: participation already recorded for member %s and mission %s",
			ErrDuplicateParticipation, input.MemberID, input.MissionID)
	}

	participationID := uuid.New().String()
	recordedAt := time.Now().UTC().Format(time.RFC3339)
	points := h.config.BasePoints + int(math.Round(input.HoursServed*float64(h.config.PointsPerHour)))

	metadataJSON, err := json.Marshal(input.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal metadata: %v", ErrDatabaseInsertFailed, err)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO participations (
			id, member_id, mission_id, role, hours_served,
			points_awarded, status, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		participationID,
		input.MemberID,
		input.MissionID,
		input.Role,
		input.HoursServed,
		points,
		models.ParticipationStatusRecorded,
		metadataJSON,
		recordedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	_, err = h.db.ExecContext(ctx, `
		UPDATE members SET engagement_points = engagement_points + $1 WHERE id = $2`,
		points, input.MemberID)
	if err != nil {
		return nil, fmt.Errorf("%w: engagement update failed: %v", ErrDatabaseInsertFailed, err)
	}

	// The cached profile now carries stale engagement numbers.
	if err := h.redis.Del(ctx, "member:profile:"+input.MemberID).Err(); err != nil {
		h.logger.Warn("failed to invalidate cached profile", map[string]interface{}{
			"memberId": input.MemberID,
			"error":    err,
		})
	}

	h.logger.Info("participation recorded", map[string]interface{}{
		"participationId": participationID,
		"memberId":        input.MemberID,
		"missionId":       input.MissionID,
		"pointsAwarded":   points,
	})

	return &Output{
		ParticipationID: participationID,
		PointsAwarded:   points,
		Status:          models.ParticipationStatusRecorded,
		RecordedAt:      recordedAt,
	}, nil
}

func (h *Handler) validate(input *Input) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(inputSchema),
		gojsonschema.NewGoLoader(input),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %v", ErrValidationFailed, msgs)
	}
	return nil
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
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
