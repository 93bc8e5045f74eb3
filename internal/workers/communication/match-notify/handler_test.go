// internal/workers/communication/match-notify/handler_test.go
package matchnotify

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"volunteer-match-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@volunteer.org",
		SenderID:     "VolMatch",
		AWSRegion:    "eu-west-1",
		Timeout:      30 * time.Second,
	}
}

func createTestInput(notificationType string) *Input {
	return &Input{
		RecipientID:      "member-001",
		RecipientType:    RecipientTypeMember,
		NotificationType: notificationType,
		MissionID:        "mission-001",
		MissionTitle:     "Community Health Drive",
		MatchScore:       87,
		MatchGrade:       "Excellent",
		ImprovementTip:   "Add your specialties to your profile to improve skill matching",
		Priority:         "high",
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

func newTestHandler(config *Config, db *sql.DB, t *testing.T, sesMock SESService, snsMock SNSService) *Handler {
	return &Handler{
		config:      config,
		db:          db,
		logger:      newTestLogger(t),
		sesClient:   sesMock,
		snsClient:   snsMock,
		templateMap: loadTemplates(),
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		emailEnabled   bool
		smsEnabled     bool
		priority       string
		expectedStatus string
	}{
		{"email and SMS success", true, true, "high", StatusSent},
		{"email only success", true, false, "medium", StatusSent},
		{"SMS only for high priority", false, true, "high", StatusSent},
		{"no SMS for medium priority", false, true, "medium", StatusDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`SELECT email, phone FROM members WHERE id = \$1`).
				WithArgs("member-001").
				WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
					AddRow("member@example.com", "+33612345678"))

			mockSES := &MockSESService{
				SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
					assert.Equal(t, "member@example.com", params.Destination.ToAddresses[0])
					assert.Equal(t, "noreply@volunteer.org", *params.Source)
					return &ses.SendEmailOutput{}, nil
				},
			}

			mockSNS := &MockSNSService{
				PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
					assert.Equal(t, "+33612345678", *params.PhoneNumber)
					return &sns.PublishOutput{}, nil
				},
			}

			config := createTestConfig()
			config.EmailEnabled = tt.emailEnabled
			config.SMSEnabled = tt.smsEnabled

			handler := newTestHandler(config, db, t, mockSES, mockSNS)

			input := createTestInput(TypeMatchFound)
			input.Priority = tt.priority
			output, err := handler.Execute(context.Background(), input)

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedStatus, output.Status)
			assert.NotEmpty(t, output.NotificationID)
			assert.NotEmpty(t, output.SentAt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_RendersMatchDetails(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM members WHERE id = \$1`).
		WithArgs("member-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("member@example.com", ""))

	var gotSubject, gotBody string
	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			gotSubject = *params.Message.Subject.Data
			gotBody = *params.Message.Body.Text.Data
			return &ses.SendEmailOutput{}, nil
		},
	}

	handler := newTestHandler(createTestConfig(), db, t, mockSES, &MockSNSService{})

	output, err := handler.Execute(context.Background(), createTestInput(TypeMatchFound))

	assert.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, "We found a mission for you: Community Health Drive", gotSubject)
	assert.Contains(t, gotBody, "Excellent match")
	assert.Contains(t, gotBody, "87/100")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_RecipientNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM members WHERE id = \$1`).
		WithArgs("member-001").
		WillReturnError(sql.ErrNoRows)

	handler := newTestHandler(createTestConfig(), db, t, &MockSESService{}, &MockSNSService{})

	output, err := handler.Execute(context.Background(), createTestInput(TypeMatchFound))

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.NotEmpty(t, output.NotificationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UnknownTemplate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM members WHERE id = \$1`).
		WithArgs("member-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("member@example.com", ""))

	handler := newTestHandler(createTestConfig(), db, t, &MockSESService{}, &MockSNSService{})

	output, err := handler.Execute(context.Background(), createTestInput("unknown_type"))

	assert.Error(t, err)
	assert.Nil(t, output)
}

func TestHandler_Execute_EmailFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM members WHERE id = \$1`).
		WithArgs("member-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("member@example.com", "+33612345678"))

	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("SES service unavailable")
		},
	}

	handler := newTestHandler(createTestConfig(), db, t, mockSES, &MockSNSService{})

	output, err := handler.Execute(context.Background(), createTestInput(TypeMatchFound))

	assert.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SMSFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM members WHERE id = \$1`).
		WithArgs("member-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("member@example.com", "+33612345678"))

	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		},
	}
	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("SNS service unavailable")
		},
	}

	handler := newTestHandler(createTestConfig(), db, t, mockSES, mockSNS)

	output, err := handler.Execute(context.Background(), createTestInput(TypeMatchFound))

	assert.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Template Rendering Tests
// ==========================

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]interface{}
		expected string
	}{
		{
			name:     "replaces placeholders",
			template: "Hello {{name}}, your score is {{score}}",
			data:     map[string]interface{}{"name": "Amira", "score": 87},
			expected: "Hello Amira, your score is 87",
		},
		{
			name:     "strips missing placeholders",
			template: "Hello {{name}}{{missing}}",
			data:     map[string]interface{}{"name": "Amira"},
			expected: "Hello Amira",
		},
		{
			name:     "no placeholders",
			template: "Plain text",
			data:     map[string]interface{}{"name": "Amira"},
			expected: "Plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderTemplate(tt.template, tt.data))
		})
	}
}
