package errors

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBError_Nil(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
}

func TestMapDBError_PassThrough(t *testing.T) {
	err := MapDBError(assert.AnError)
	assert.Equal(t, assert.AnError, err)
}

func TestMapDBError_ContextErrors(t *testing.T) {
	timeout := MapDBError(fmt.Errorf("query jobs: %w", context.DeadlineExceeded))
	assert.True(t, IsTimeout(timeout))

	canceled := MapDBError(fmt.Errorf("query jobs: %w", context.Canceled))
	assert.True(t, IsCanceled(canceled))
}

func TestMapDBError_NoRows(t *testing.T) {
	assert.True(t, IsNotFound(MapDBError(pgx.ErrNoRows)))
	assert.True(t, IsNotFound(MapDBError(sql.ErrNoRows)))
	assert.True(t, IsNotFound(MapDBError(fmt.Errorf("lookup van: %w", pgx.ErrNoRows))))
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "vans_name_key",
		Detail:         `Key (name)=(Van Alpha) already exists.`,
	}

	err := MapDBError(pgErr)
	require.True(t, IsConflict(err))
	assert.Equal(t, "name", GetField(err))
	require.ErrorIs(t, err, error(pgErr))
}

func TestMapDBError_UniqueViolation_ColumnNameWins(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       pgerrcode.UniqueViolation,
		ColumnName: "device_id",
		Detail:     `Key (name)=(Van Alpha) already exists.`,
	}

	err := MapDBError(pgErr)
	require.True(t, IsConflict(err))
	assert.Equal(t, "device_id", GetField(err))
}

func TestMapDBError_UniqueViolation_MultiColumn(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "technician_default_hours_technician_id_day_of_week_start_ti_key",
		Detail:         `Key (technician_id, day_of_week, start_time)=(3, 1, 08:00:00) already exists.`,
	}

	err := MapDBError(pgErr)
	require.True(t, IsConflict(err))
	assert.Equal(t, "technician_id, day_of_week, start_time", GetField(err))
}

func TestMapDBError_ForeignKey_MissingParent(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.ForeignKeyViolation,
		ConstraintName: "jobs_assigned_technician_fkey",
		TableName:      "jobs",
		Detail:         `Key (assigned_technician)=(99) is not present in table "technicians".`,
	}

	err := MapDBError(pgErr)
	require.True(t, IsForeignKey(err))
	assert.Contains(t, err.Error(), "referenced technician does not exist")
}

func TestMapDBError_ForeignKey_StillReferenced(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.ForeignKeyViolation,
		ConstraintName: "jobs_order_id_fkey",
		TableName:      "orders",
		Detail:         `Key (id)=(7) is still referenced from table "jobs".`,
	}

	err := MapDBError(pgErr)
	require.True(t, IsForeignKey(err))
	assert.Contains(t, err.Error(), "still referenced by job")
}

func TestMapDBError_ForeignKey_TableFallback(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:      pgerrcode.ForeignKeyViolation,
		TableName: "van_equipment",
	}

	err := MapDBError(pgErr)
	require.True(t, IsForeignKey(err))
	assert.Contains(t, err.Error(), "van equipment")
}

func TestMapDBError_NotNullViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       pgerrcode.NotNullViolation,
		ColumnName: "job_duration",
		TableName:  "jobs",
	}

	err := MapDBError(pgErr)
	require.True(t, IsValidation(err))
	assert.Equal(t, "job_duration", GetField(err))
	assert.Contains(t, err.Error(), "required field is missing")
}

func TestMapDBError_CheckViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.CheckViolation,
		ConstraintName: "travel_time_cache_travel_time_seconds_check",
		TableName:      "travel_time_cache",
	}

	err := MapDBError(pgErr)
	require.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "invalid value")
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure}

	err := MapDBError(pgErr)
	require.False(t, IsConflict(err))
	assert.Equal(t, ErrCodeInternal, GetCode(err))
	require.ErrorIs(t, err, error(pgErr))
}

func TestMapTableToDomain_Fallback(t *testing.T) {
	assert.Equal(t, "schema migrations", mapTableToDomain("schema_migrations"))
	assert.Equal(t, "job", mapTableToDomain("  JOBS "))
}
