package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := New()
	defer bus.Shutdown()

	sub := bus.Subscribe(TopicPipelineStage)
	defer sub.Close()

	bus.Publish(context.Background(), TopicPipelineStage, SourcePipeline, StageEvent{
		Board:  "sipeed_tang_nano_20k",
		Stage:  "dtc",
		Status: StageStarted,
	})

	select {
	case env := <-sub.C():
		evt, ok := env.Payload.(StageEvent)
		if !ok {
			t.Fatalf("unexpected payload type %T", env.Payload)
		}
		if evt.Stage != "dtc" || evt.Status != StageStarted {
			t.Fatalf("unexpected event: %+v", evt)
		}
		if env.Source != SourcePipeline {
			t.Fatalf("unexpected source %q", env.Source)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for stage event")
	}
}

func TestPublishToOtherTopicNotDelivered(t *testing.T) {
	bus := New()
	defer bus.Shutdown()

	sub := bus.Subscribe(TopicPipelineStage)
	defer sub.Close()

	bus.Publish(context.Background(), TopicToolOutput, SourceToolRunner, ToolOutputEvent{Tool: "dtc", Line: "ok"})

	select {
	case env := <-sub.C():
		t.Fatalf("unexpected delivery: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOldestWhenFull(t *testing.T) {
	bus := New(WithTopicBuffer(TopicToolOutput, 1))
	defer bus.Shutdown()

	sub := bus.Subscribe(TopicToolOutput, WithSubscriptionName("slow"))
	defer sub.Close()

	ctx := context.Background()
	bus.Publish(ctx, TopicToolOutput, SourceToolRunner, ToolOutputEvent{Tool: "dtc", Line: "first"})
	bus.Publish(ctx, TopicToolOutput, SourceToolRunner, ToolOutputEvent{Tool: "dtc", Line: "second"})

	select {
	case env := <-sub.C():
		evt := env.Payload.(ToolOutputEvent)
		if evt.Line != "second" {
			t.Fatalf("expected newest event to survive, got %q", evt.Line)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for tool output")
	}
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *Bus
	bus.Publish(context.Background(), TopicPipelineStage, SourcePipeline, StageEvent{})
	sub := bus.Subscribe(TopicPipelineStage)
	if _, ok := <-sub.C(); ok {
		t.Fatal("expected closed channel from nil bus subscription")
	}
	sub.Close()
	bus.Shutdown()
}

func TestSubscriptionCloseRemovesRouting(t *testing.T) {
	bus := New()
	defer bus.Shutdown()

	sub := bus.Subscribe(TopicPipelineStage)
	sub.Close()

	bus.mu.RLock()
	n := len(bus.subscribers[TopicPipelineStage])
	bus.mu.RUnlock()
	if n != 0 {
		t.Fatalf("expected no subscribers after close, got %d", n)
	}
}
