package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  ErrorCode
		wantField string
	}{
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantCode: ErrCodeTimeout},
		{name: "canceled", err: context.Canceled, wantCode: ErrCodeCanceled},
		{name: "no rows", err: pgx.ErrNoRows, wantCode: ErrCodeNotFound},
		{
			name:      "unique from detail",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: "Key (id)=(abc) already exists."},
			wantCode:  ErrCodeConflict,
			wantField: "id",
		},
		{
			name:      "not null",
			err:       &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "actor"},
			wantCode:  ErrCodeValidation,
			wantField: "actor",
		},
		{name: "missing table", err: &pgconn.PgError{Code: pgerrcode.UndefinedTable}, wantCode: ErrCodeUnavailable},
		{name: "other", err: &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, wantCode: ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDBError(tt.err)
			assert.Equal(t, tt.wantCode, GetCode(got))
			assert.Equal(t, tt.wantField, GetField(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapDBError_PassThrough(t *testing.T) {
	assert.NoError(t, MapDBError(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, MapDBError(plain))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "x"))
}
