package interp

import "sync"

// parallelRows calls fn for every row in [0, height), spreading rows over
// up to workers goroutines. fn must only write to its own row.
func parallelRows(height, workers int, fn func(y int)) {
	if workers <= 1 || height < 2 {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	if workers > height {
		workers = height
	}

	var wg sync.WaitGroup
	rows := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				fn(y)
			}
		}()
	}

	for y := 0; y < height; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()
}
