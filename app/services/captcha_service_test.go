package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeStore_TakeConsumes(t *testing.T) {
	s := newChallengeStore(time.Minute)
	defer s.Close()

	s.Set("a", 90)
	angle, ok := s.Take("a")
	require.True(t, ok)
	assert.Equal(t, 90, angle)

	_, ok = s.Take("a")
	assert.False(t, ok)
}

func TestChallengeStore_Expiry(t *testing.T) {
	s := newChallengeStore(time.Millisecond)
	defer s.Close()

	s.Set("a", 90)
	time.Sleep(5 * time.Millisecond)
	_, ok := s.Take("a")
	assert.False(t, ok)
}

func TestCaptchaService_UnknownChallenge(t *testing.T) {
	svc, err := NewCaptchaServiceRotate(time.Minute, 5, 160)
	require.NoError(t, err)
	defer svc.Close()

	assert.False(t, svc.VerifyRotate(context.Background(), "missing", 0))
}

func TestCaptchaService_GenerateAndVerify(t *testing.T) {
	svc, err := NewCaptchaServiceRotate(time.Minute, 5, 160)
	require.NoError(t, err)
	defer svc.Close()

	ch, err := svc.GenerateRotate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, ch.ID)
	assert.NotEmpty(t, ch.MasterImageBase64)
	assert.NotEmpty(t, ch.ThumbImageBase64)

	impl := svc.(*captchaServiceImpl)
	impl.store.mu.Lock()
	_, pending := impl.store.m[ch.ID]
	impl.store.mu.Unlock()
	require.True(t, pending)

	// the first attempt consumes the challenge whatever the angle
	svc.VerifyRotate(context.Background(), ch.ID, 0)
	assert.False(t, svc.VerifyRotate(context.Background(), ch.ID, 0))
}
