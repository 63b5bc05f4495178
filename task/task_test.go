package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tempokey/tempokey/model"
)

func TestLifecycle(t *testing.T) {
	s := NewStore()
	created := s.Create("song.wav")

	assert := assert.New(t)
	assert.NotEmpty(created.ID)
	assert.Equal(StatusPending, created.Status)
	assert.Equal("song.wav", created.Filename)

	s.SetProcessing(created.ID)
	got, ok := s.Get(created.ID)
	assert.True(ok)
	assert.Equal(StatusProcessing, got.Status)

	s.SetProgress(created.ID, 40)
	got, _ = s.Get(created.ID)
	assert.Equal(40, got.Progress)

	result := &model.AnalysisResult{KeyName: "A minor"}
	s.Complete(created.ID, result)
	got, _ = s.Get(created.ID)
	assert.Equal(StatusCompleted, got.Status)
	assert.Equal(100, got.Progress)
	assert.Equal("A minor", got.Result.KeyName)
}

func TestFailRecordsError(t *testing.T) {
	s := NewStore()
	created := s.Create("broken.wav")
	s.Fail(created.ID, errors.New("decode failed"))

	got, ok := s.Get(created.ID)
	assert.True(t, ok)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "decode failed", got.Error)
}

func TestGetReturnsACopy(t *testing.T) {
	s := NewStore()
	created := s.Create("song.wav")

	got, _ := s.Get(created.ID)
	got.Status = StatusFailed

	again, _ := s.Get(created.ID)
	assert.Equal(t, StatusPending, again.Status)
}

func TestGetUnknownID(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	s := NewStore()
	created := s.Create("song.wav")

	assert := assert.New(t)
	assert.True(s.Delete(created.ID))
	assert.False(s.Delete(created.ID))
	_, ok := s.Get(created.ID)
	assert.False(ok)
}

func TestAllIsNewestFirst(t *testing.T) {
	s := NewStore()
	first := s.Create("first.wav")
	time.Sleep(2 * time.Millisecond)
	second := s.Create("second.wav")
	time.Sleep(2 * time.Millisecond)
	third := s.Create("third.wav")

	all := s.All()
	assert := assert.New(t)
	assert.Len(all, 3)
	assert.Equal(third.ID, all[0].ID)
	assert.Equal(second.ID, all[1].ID)
	assert.Equal(first.ID, all[2].ID)
}
