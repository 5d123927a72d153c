package cli

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fa-friend/fa/pkg/adapter"
	"github.com/fa-friend/fa/pkg/repository"
	"github.com/fa-friend/fa/pkg/usecase/alert"
	"github.com/m-mizutani/gt"
)

// slowQuakes blocks every fetch until release is closed
type slowQuakes struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (s *slowQuakes) Fetch(ctx context.Context) ([]*adapter.Earthquake, error) {
	s.calls.Add(1)
	s.started <- struct{}{}
	<-s.release
	return nil, nil
}

func TestFetchJobSkipsOverlappingRun(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewSQLite(ctx, filepath.Join(t.TempDir(), "fa.db"))
	gt.NoError(t, err)
	defer repo.Close()

	src := &slowQuakes{started: make(chan struct{}, 2), release: make(chan struct{})}
	job := newFetchJob(ctx, alert.New(repo, alert.WithEarthquakeSource(src)))

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-src.started

	// the first cycle is still blocked, so this one is skipped
	job.Run()
	gt.Equal(t, src.calls.Load(), int32(1))

	close(src.release)
	<-done

	job.Run()
	gt.Equal(t, src.calls.Load(), int32(2))
}
