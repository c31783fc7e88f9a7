package apperror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "app error passes through", err: BadRequest("x"), want: http.StatusBadRequest},
		{name: "wrapped app error", err: fmt.Errorf("ctx: %w", Forbidden("no")), want: http.StatusForbidden},
		{name: "record not found", err: gorm.ErrRecordNotFound, want: http.StatusNotFound},
		{name: "wrapped record not found", err: errors.WithMessage(gorm.ErrRecordNotFound, "find user"), want: http.StatusNotFound},
		{name: "duplicate key", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, want: http.StatusConflict},
		{name: "other mysql error", err: &mysql.MySQLError{Number: 1213}, want: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, From(tt.err).StatusCode)
		})
	}
}

func TestFromNil(t *testing.T) {
	assert.Nil(t, From(nil))
}

func TestNewDetails(t *testing.T) {
	e := BadRequest("参数错误", "title不能为空", "description不能为空")
	assert.Equal(t, "参数错误", e.Error())
	assert.Equal(t, []string{"title不能为空", "description不能为空"}, e.Errors)
	assert.Equal(t, []string{}, NotFound("x").Errors)
}

func TestInternalDoesNotLeakCause(t *testing.T) {
	e := From(errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.NotContains(t, e.Message, "10.0.0.1")
}
