package kafka_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"go-hris-iam/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxEvent(t *testing.T) {
	event, err := kafka.NewOutboxEvent("req-1", "employee", "emp-1", "employee_created", "hr.topic", map[string]string{"a": "b"})

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, kafka.OutboxStatusPending, event.Status)
	assert.JSONEq(t, `{"a":"b"}`, string(event.Payload))

	_, err = kafka.NewOutboxEvent("", "employee", "emp-1", "employee_created", "", map[string]string{})
	assert.Error(t, err)
}

func TestOutboxRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	event, err := kafka.NewOutboxEvent("req-1", "company", "c-1", "tenant_deleted", "hr.tenant.lifecycle.v1", map[string]any{"company_id": "c-1"})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(event.ID, "req-1", "company", "c-1", "tenant_deleted", "hr.tenant.lifecycle.v1", event.Payload, kafka.OutboxStatusPending).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureOutboxTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS outbox_events")).
		WillReturnError(errors.New("permission denied"))

	err = kafka.EnsureOutboxTable(context.Background(), db)
	assert.ErrorContains(t, err, "ensure outbox table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOutboxEvent_Dead(t *testing.T) {
	event := kafka.OutboxEvent{ID: "e", Topic: "t", Payload: []byte(`{}`), Status: kafka.OutboxStatusDead}
	assert.NoError(t, kafka.ValidateOutboxEvent(event))

	event.Status = "unknown"
	assert.Error(t, kafka.ValidateOutboxEvent(event))
}

func TestOutboxRepository_CreateRejectsInvalid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = kafka.NewOutboxRepository(db).Create(context.Background(), kafka.OutboxEvent{ID: "x"})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "request_id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count", "next_retry_at",
	}).AddRow("e-1", "req-9", "employee", "emp-1", "employee_created", "hr.employee.lifecycle.v1", []byte(`{}`), "failed", 3, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 10).
		WillReturnRows(rows)

	events, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e-1", events[0].ID)
	assert.Equal(t, "employee_created", events[0].EventType)
	assert.Equal(t, "req-9", events[0].RequestID)
	assert.Equal(t, 3, events[0].RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkSentAndFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := kafka.NewOutboxRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("e-1", kafka.OutboxStatusSent).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("e-2", kafka.OutboxStatusFailed, kafka.OutboxStatusDead, "broker down", kafka.MaxOutboxAttempts).
		WillReturnError(errors.New("db gone"))

	assert.NoError(t, repo.MarkSent(context.Background(), "e-1"))
	assert.Error(t, repo.MarkFailed(context.Background(), "e-2", "broker down"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
