package realtime

import (
	"sync"
	"testing"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue[int]()
	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d: queue reported closed", i)
		}
		if v != i {
			t.Errorf("Pop %d = %d, want %d", i, v, i)
		}
	}
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewQueue[string]()
	got := make(chan string, 1)
	go func() {
		v, _ := q.Pop()
		got <- v
	}()

	q.Push("late")
	if v := <-got; v != "late" {
		t.Errorf("Pop = %q, want %q", v, "late")
	}
}

func TestQueueClearDiscardsAll(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	q.Clear()

	if n := q.Len(); n != 0 {
		t.Errorf("Len after Clear = %d, want 0", n)
	}

	// Items pushed after the clear are still delivered.
	q.Push(4)
	v, ok := q.Pop()
	if !ok || v != 4 {
		t.Errorf("Pop after Clear = (%d, %v), want (4, true)", v, ok)
	}
}

func TestQueueCloseDrainsRemaining(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Push(2)
	q.Close()

	for want := 1; want <= 2; want++ {
		v, ok := q.Pop()
		if !ok || v != want {
			t.Fatalf("Pop = (%d, %v), want (%d, true)", v, ok, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop after drain on closed queue reported an item")
	}
}

func TestQueueCloseUnblocksWaiters(t *testing.T) {
	q := NewQueue[int]()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	q.Close()
	if ok := <-done; ok {
		t.Error("blocked Pop returned an item from an empty closed queue")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue[int]()
	const producers = 4
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()
	q.Close()

	count := 0
	for {
		if _, ok := q.Pop(); !ok {
			break
		}
		count++
	}
	if count != producers*perProducer {
		t.Errorf("drained %d items, want %d", count, producers*perProducer)
	}
}
