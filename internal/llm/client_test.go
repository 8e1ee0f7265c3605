package llm

import (
	"sync"
	"testing"
)

func TestTokenTrackerAccumulates(t *testing.T) {
	tr := NewTokenTracker()

	tr.Add(100, 40)
	tr.Add(50, 10)

	in, out := tr.Total()
	if in != 150 || out != 50 {
		t.Errorf("Total() = (%d, %d), want (150, 50)", in, out)
	}
	if tr.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", tr.Calls())
	}
}

func TestTokenTrackerConcurrentAdds(t *testing.T) {
	tr := NewTokenTracker()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add(10, 5)
		}()
	}
	wg.Wait()

	in, out := tr.Total()
	if in != 200 || out != 100 {
		t.Errorf("Total() = (%d, %d), want (200, 100)", in, out)
	}
	if tr.Calls() != 20 {
		t.Errorf("Calls() = %d, want 20", tr.Calls())
	}
}
