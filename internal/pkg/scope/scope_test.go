package scope

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScope_CloseCancelsAndWaits(t *testing.T) {
	s := New(context.Background())

	var finished atomic.Int32
	for i := 0; i < 3; i++ {
		s.Go(func(ctx context.Context) {
			<-ctx.Done()
			finished.Add(1)
		})
	}

	s.Close()
	assert.Equal(t, int32(3), finished.Load())
}

func TestScope_GoAfterClose(t *testing.T) {
	s := New(context.Background())
	s.Close()

	ran := false
	assert.False(t, s.Go(func(context.Context) { ran = true }))
	assert.False(t, ran)
	s.Close()
}

func TestScope_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s := New(parent)

	done := make(chan struct{})
	s.Go(func(ctx context.Context) {
		<-ctx.Done()
		close(done)
	})

	cancel()
	<-done
	s.Close()
}
