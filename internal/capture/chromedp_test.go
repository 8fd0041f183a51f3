package capture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestURLSet_DedupPreservesOrder(t *testing.T) {
	t.Parallel()

	s := newURLSet()
	s.add("https://cdn.example/a.m3u8")
	s.add("https://cdn.example/b.mp4")
	s.add("https://cdn.example/a.m3u8")

	require.Equal(t, 2, s.len())
	require.Equal(t, []string{
		"https://cdn.example/a.m3u8",
		"https://cdn.example/b.mp4",
	}, s.values())
}

func TestURLSet_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	s := newURLSet()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.add("https://cdn.example/same.m3u8")
		}()
	}
	wg.Wait()
	require.Equal(t, 1, s.len())
}

func TestURLSet_ValuesIsACopy(t *testing.T) {
	t.Parallel()

	s := newURLSet()
	s.add("https://cdn.example/a.mp4")
	got := s.values()
	got[0] = "mutated"
	require.Equal(t, []string{"https://cdn.example/a.mp4"}, s.values())
}

func TestForwardCancel(t *testing.T) {
	t.Parallel()

	parent, cancelParent := context.WithCancel(context.Background())
	child, cancelChild := context.WithCancel(context.Background())
	defer cancelChild()

	stop := forwardCancel(parent, cancelChild)
	defer stop()

	cancelParent()
	select {
	case <-child.Done():
	case <-time.After(time.Second):
		t.Fatal("child context not canceled after parent")
	}
}

func TestForwardCancel_StopDetaches(t *testing.T) {
	t.Parallel()

	parent, cancelParent := context.WithCancel(context.Background())
	child, cancelChild := context.WithCancel(context.Background())
	defer cancelChild()

	stop := forwardCancel(parent, cancelChild)
	stop()
	cancelParent()

	select {
	case <-child.Done():
		t.Fatal("child canceled after stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWaitDomainBudget(t *testing.T) {
	t.Parallel()

	c := &Capturer{cfg: Config{DomainQPS: 1000}}

	require.NoError(t, c.waitDomainBudget(context.Background(), "https://host.example/v"))
	require.NoError(t, c.waitDomainBudget(context.Background(), "https://other.example/v"))

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, c.waitDomainBudget(canceled, "https://host.example/v"))
}

func TestWaitDomainBudget_Disabled(t *testing.T) {
	t.Parallel()

	c := &Capturer{}
	require.NoError(t, c.waitDomainBudget(context.Background(), "://not a url"))
}
