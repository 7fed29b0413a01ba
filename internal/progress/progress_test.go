package progress_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keshon/kvc/internal/progress"
)

func TestTrackerFinishSummary(t *testing.T) {
	var buf bytes.Buffer
	p := progress.New(&buf, 10, "Verifying objects", "objects")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment()
		}()
	}
	wg.Wait()
	p.Finish()

	assert.Equal(t, 10, p.Current())
	assert.Contains(t, buf.String(), "✓ Verifying objects (10 objects, ")
}
