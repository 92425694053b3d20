package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentReturnsNewestFirst(t *testing.T) {
	t.Parallel()

	s := NewService(10)
	s.Success("Book added successfully")
	s.Error("Error occurred, try again")
	s.Info("Session refreshed")

	recent := s.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, TypeInfo, recent[0].Type)
	assert.Equal(t, "Session refreshed", recent[0].Message)
	assert.Equal(t, TypeError, recent[1].Type)

	all := s.Recent(0)
	require.Len(t, all, 3)
	assert.Equal(t, TypeSuccess, all[2].Type)
	for _, n := range all {
		assert.NotEmpty(t, n.ID)
		assert.False(t, n.Timestamp.IsZero())
	}
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()

	s := NewService(3)
	for i := 0; i < 10; i++ {
		s.Info(fmt.Sprintf("message %d", i))
	}

	recent := s.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "message 9", recent[0].Message)
	assert.Equal(t, "message 7", recent[2].Message)
}

func TestSubscribeReceivesNotifications(t *testing.T) {
	t.Parallel()

	s := NewService(10)
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Success("Member updated successfully")

	select {
	case n := <-ch:
		assert.Equal(t, TypeSuccess, n.Type)
		assert.Equal(t, "Member updated successfully", n.Message)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}

	unsubscribe()
	s.Success("after unsubscribe")
	_, open := <-ch
	assert.False(t, open)
}
