package models

import (
	"time"
)

// RankRequest asks the service to rank a graph. Either Graph (edge-list
// text, same format as graph files) or Nodes+Edges must be given.
type RankRequest struct {
	Graph        string   `json:"graph,omitempty"`
	Nodes        int      `json:"nodes,omitempty"`
	Edges        [][2]int `json:"edges,omitempty"`
	Iterations   int      `json:"iterations"`
	InitialValue int      `json:"initialValue"`
	TopK         int      `json:"topK,omitempty"`
}

// Job represents a ranking job
type Job struct {
	ID          string      `json:"id"`
	Request     JobRequest  `json:"request"`
	Status      JobStatus   `json:"status"`
	Progress    JobProgress `json:"progress"`
	Result      *JobResult  `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
	Cached      bool        `json:"cached"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	StartedAt   *time.Time  `json:"startedAt,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}

// JobRequest is the part of a RankRequest kept on the job
type JobRequest struct {
	Nodes        int `json:"nodes"`
	Edges        int `json:"edges"`
	Iterations   int `json:"iterations"`
	InitialValue int `json:"initialValue"`
	TopK         int `json:"topK"`
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether the job can no longer change state
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

type JobProgress struct {
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

// JobResult summarizes a finished run
type JobResult struct {
	Iterations    int        `json:"iterations"`
	Converged     bool       `json:"converged"`
	Delta         float64    `json:"delta"`
	Mode          string     `json:"mode"`
	DanglingNodes int        `json:"danglingNodes"`
	RuntimeMS     int64      `json:"runtimeMs"`
	Top           []NodeRank `json:"top"`
}

type NodeRank struct {
	Node int     `json:"node"`
	Rank float64 `json:"rank"`
}

// APIResponse is the envelope of every HTTP response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
