package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestNullIfEmpty(t *testing.T) {
	blank := "   "
	msg := " hi "
	assert.Nil(t, NullIfEmpty(nil))
	assert.Nil(t, NullIfEmpty(&blank))
	assert.Equal(t, "hi", NullIfEmpty(&msg))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(sql.NullString{}))
	got := StringPtr(sql.NullString{String: "x", Valid: true})
	if assert.NotNil(t, got) {
		assert.Equal(t, "x", *got)
	}
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1452}))
	assert.True(t, IsDuplicateKey(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")))
	assert.False(t, IsDuplicateKey(nil))
	assert.False(t, IsDuplicateKey(sql.ErrNoRows))
}

func TestLikeContainsEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%pune%", LikeContains("  Pune "))
	assert.Equal(t, "%50!%!_off!!%", LikeContains("50%_off!"))
	assert.Equal(t, "%%", LikeContains(""))
}
