package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveEmails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewSubscriberRepository(mock, "newsletter_subs")

	mock.ExpectQuery(`SELECT email FROM newsletter_subs WHERE unsubscribed = \$1 ORDER BY created_at`).
		WithArgs(false).
		WillReturnRows(pgxmock.NewRows([]string{"email"}).AddRow("a@example.com").AddRow("b@example.com"))

	emails, err := repo.ActiveEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, emails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveEmailsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewSubscriberRepository(mock, "newsletter_subs")

	mock.ExpectQuery(`SELECT email FROM newsletter_subs`).WithArgs(pgxmock.AnyArg()).WillReturnError(errors.New("relation does not exist"))

	_, err = repo.ActiveEmails(context.Background())
	assert.ErrorContains(t, err, "relation does not exist")
}

func TestSubscriberEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "newsletter_subs"`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, NewSubscriberRepository(mock, "newsletter_subs").EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
