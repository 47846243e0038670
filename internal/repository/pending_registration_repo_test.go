package repository

import (
	"context"
	"testing"
	"time"

	"mertflix/internal/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingRegistrationRepository_UpsertOverwritesByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPendingRegistrationRepository(db)

	mock.ExpectExec(`INSERT INTO "pending_registrations" .*ON CONFLICT \("email"\) DO UPDATE SET "password_hash"="excluded"."password_hash","code_hash"="excluded"."code_hash","expires_at"="excluded"."expires_at","updated_at"="excluded"."updated_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &entity.PendingRegistration{
		Email:        "a@x.com",
		PasswordHash: "bcrypt",
		CodeHash:     "digest",
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingRegistrationRepository_ConsumeDeletesAndReturns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPendingRegistrationRepository(db)
	now := time.Now()

	mock.ExpectQuery(`DELETE FROM "pending_registrations" WHERE email = .* AND code_hash = .* AND expires_at > .* RETURNING`).
		WithArgs("a@x.com", "digest", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"email", "password_hash", "code_hash", "expires_at", "created_at", "updated_at"}).
			AddRow("a@x.com", "bcrypt", "digest", now.Add(time.Minute), now, now))

	pending, err := repo.Consume(context.Background(), "a@x.com", "digest", now)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "bcrypt", pending.PasswordHash)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingRegistrationRepository_ConsumeNoMatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPendingRegistrationRepository(db)

	mock.ExpectQuery(`DELETE FROM "pending_registrations" .* RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"email"}))

	pending, err := repo.Consume(context.Background(), "a@x.com", "wrong", time.Now())
	require.NoError(t, err)
	assert.Nil(t, pending)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingRegistrationRepository_DeleteExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPendingRegistrationRepository(db)

	mock.ExpectExec(`DELETE FROM "pending_registrations" WHERE expires_at <= `).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	require.NoError(t, mock.ExpectationsWereMet())
}
