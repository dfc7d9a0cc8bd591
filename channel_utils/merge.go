package channel_utils

import (
	"sync"

	"github.com/DonxYu/Workflow/application/ports/outbound"
)

// MergeChannels fans the given channels into one, closing the merged channel
// once every input closes. Forwarding prefers the shared worker pool and
// falls back to a dedicated goroutine when the pool rejects a task, so the
// merged channel always drains its inputs and always closes.
func MergeChannels[T any](workerPool outbound.TaskDispatcher, channels ...<-chan T) <-chan T {
	var wg sync.WaitGroup
	merged := make(chan T)

	for _, c := range channels {
		ch := c
		wg.Add(1)
		forward := func() {
			defer wg.Done()
			for val := range ch {
				merged <- val
			}
		}
		if err := workerPool.Submit(forward); err != nil {
			go forward()
		}
	}

	closer := func() {
		wg.Wait()
		close(merged)
	}
	if err := workerPool.Submit(closer); err != nil {
		go closer()
	}

	return merged
}
