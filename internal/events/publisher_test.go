package events

import (
	"sync"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	before := time.Now()
	event := NewEvent(EventTaskCreated, "TSK-001", map[string]string{"title": "x"})
	after := time.Now()

	if event.Type != EventTaskCreated {
		t.Errorf("expected type %s, got %s", EventTaskCreated, event.Type)
	}
	if event.EntityID != "TSK-001" {
		t.Errorf("expected entity ID TSK-001, got %s", event.EntityID)
	}
	if event.Time.Before(before) || event.Time.After(after) {
		t.Errorf("event time %v not between %v and %v", event.Time, before, after)
	}
}

func TestMemoryPublisher_PublishAndSubscribe(t *testing.T) {
	pub := NewMemoryPublisher()
	defer pub.Close()

	ch := pub.Subscribe("TSK-001")

	event := NewEvent(EventTaskUpdated, "TSK-001", "test data")
	pub.Publish(event)

	select {
	case received := <-ch:
		if received.Type != EventTaskUpdated {
			t.Errorf("expected type %s, got %s", EventTaskUpdated, received.Type)
		}
		if received.EntityID != "TSK-001" {
			t.Errorf("expected entity ID TSK-001, got %s", received.EntityID)
		}
		if received.Data != "test data" {
			t.Errorf("expected data 'test data', got %v", received.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestMemoryPublisher_GlobalSubscriber(t *testing.T) {
	pub := NewMemoryPublisher()
	defer pub.Close()

	global := pub.Subscribe(GlobalEntityID)

	pub.Publish(NewEvent(EventBugCreated, "BUG-001", nil))
	pub.Publish(NewEvent(EventMilestoneUpdated, "MS-001", nil))

	received := 0
	for received < 2 {
		select {
		case <-global:
			received++
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("global subscriber received %d events, want 2", received)
		}
	}
}

func TestMemoryPublisher_DifferentEntities(t *testing.T) {
	pub := NewMemoryPublisher()
	defer pub.Close()

	ch1 := pub.Subscribe("TSK-001")
	ch2 := pub.Subscribe("TSK-002")

	pub.Publish(NewEvent(EventCommentCreated, "TSK-001", "data"))

	select {
	case <-ch1:
		// Expected
	case <-time.After(100 * time.Millisecond):
		t.Error("TSK-001 subscriber should have received event")
	}

	select {
	case <-ch2:
		t.Error("TSK-002 subscriber should not have received event")
	case <-time.After(50 * time.Millisecond):
		// Expected
	}
}

func TestMemoryPublisher_Unsubscribe(t *testing.T) {
	pub := NewMemoryPublisher()
	defer pub.Close()

	ch := pub.Subscribe("TSK-001")

	if pub.SubscriberCount("TSK-001") != 1 {
		t.Errorf("expected 1 subscriber, got %d", pub.SubscriberCount("TSK-001"))
	}

	pub.Unsubscribe("TSK-001", ch)

	if pub.SubscriberCount("TSK-001") != 0 {
		t.Errorf("expected 0 subscribers, got %d", pub.SubscriberCount("TSK-001"))
	}

	// Channel should be closed after unsubscribe.
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
}

func TestMemoryPublisher_FullBufferDoesNotBlock(t *testing.T) {
	pub := NewMemoryPublisher(WithBufferSize(1))
	defer pub.Close()

	pub.Subscribe("TSK-001")

	done := make(chan struct{})
	go func() {
		pub.Publish(NewEvent(EventTaskUpdated, "TSK-001", 1))
		pub.Publish(NewEvent(EventTaskUpdated, "TSK-001", 2))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}
}

func TestMemoryPublisher_Close(t *testing.T) {
	pub := NewMemoryPublisher()

	ch := pub.Subscribe("TSK-001")
	pub.Close()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after publisher close")
	}

	// Publishing and subscribing after close must not panic.
	pub.Publish(NewEvent(EventTaskDeleted, "TSK-001", nil))
	closed := pub.Subscribe("TSK-002")
	if _, ok := <-closed; ok {
		t.Error("subscribe after close should return a closed channel")
	}
}

func TestMemoryPublisher_ConcurrentPublish(t *testing.T) {
	pub := NewMemoryPublisher(WithBufferSize(1000))
	defer pub.Close()

	ch := pub.Subscribe(GlobalEntityID)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				pub.Publish(NewEvent(EventTaskUpdated, "TSK-001", j))
			}
		}()
	}
	wg.Wait()

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != 100 {
				t.Errorf("received %d events, want 100", received)
			}
			return
		}
	}
}
