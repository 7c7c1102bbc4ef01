package syncfocus

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistWritesLogAndFocusTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	msgs := []redis.XMessage{
		{
			ID: "1-0",
			Values: map[string]interface{}{
				"uid":    "bob",
				"start":  "1000",
				"end":    "2500",
				"dur":    "1500",
				"tracks": "abc123,def456",
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO focus_logs`)).
		WithArgs("bob", "1000", "2500", "abc123,def456").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET total_focus_sec = total_focus_sec + $2`)).
		WithArgs("bob", int64(1500)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, persist(context.Background(), db, msgs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistSkipsFocusTimeForZeroDuration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	msgs := []redis.XMessage{
		{
			ID: "2-0",
			Values: map[string]interface{}{
				"uid":    "bob",
				"start":  "1000",
				"end":    "1000",
				"dur":    "0",
				"tracks": "",
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO focus_logs`)).
		WithArgs("bob", "1000", "1000", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, persist(context.Background(), db, msgs))
	assert.NoError(t, mock.ExpectationsWereMet())
}
