// Package scheduler carries the asynq task types used to trigger score
// recomputation out of band, the enqueueing client, and the worker that
// consumes them.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskScoreRecompute = "scores.recompute"

const TaskScoreSweep = "scores.sweep"

type ScoreRecomputePayload struct {
	PropertyID int64 `json:"propertyId"`
}

func NewScoreRecomputeTask(payload ScoreRecomputePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScoreRecompute, data), nil
}

func ParseScoreRecomputePayload(task *asynq.Task) (ScoreRecomputePayload, error) {
	var payload ScoreRecomputePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScoreRecomputePayload{}, err
	}
	return payload, nil
}

func NewScoreSweepTask() *asynq.Task {
	return asynq.NewTask(TaskScoreSweep, nil)
}
