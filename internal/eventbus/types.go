package eventbus

import "time"

// Topic identifies a logical channel on the bus.
type Topic string

const (
	// TopicPipelineStage carries StageEvent payloads for every pipeline
	// stage transition (started, finished, failed).
	TopicPipelineStage Topic = "pipeline.stage"
	// TopicToolOutput carries ToolOutputEvent payloads with captured
	// stdout/stderr lines from external tools.
	TopicToolOutput Topic = "tool.output"
)

// Source describes which component produced an event.
type Source string

const (
	SourcePipeline   Source = "pipeline"
	SourceToolRunner Source = "tool_runner"
	SourceProgrammer Source = "programmer"
	SourceUnknown    Source = "unknown"
)

// Envelope wraps a payload with routing metadata.
type Envelope struct {
	Topic     Topic
	Source    Source
	Timestamp time.Time
	Payload   any
}

// StageStatus describes the lifecycle of a single pipeline stage.
type StageStatus string

const (
	StageStarted  StageStatus = "started"
	StageFinished StageStatus = "finished"
	StageFailed   StageStatus = "failed"
)

// StageEvent is published on TopicPipelineStage.
type StageEvent struct {
	RunID    string
	Board    string
	Stage    string
	Status   StageStatus
	Err      string // set when Status == StageFailed
	Duration time.Duration
}

// ToolOutputEvent is published on TopicToolOutput, one event per line.
type ToolOutputEvent struct {
	Tool string
	Line string
}
