package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskImportRecheck = "importer.recheck"

type ImportRecheckPayload struct {
	RecordID string `json:"recordId"`
	LeadID   string `json:"leadId"`
}

func NewImportRecheckTask(payload ImportRecheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskImportRecheck, data), nil
}

func ParseImportRecheckPayload(task *asynq.Task) (ImportRecheckPayload, error) {
	var payload ImportRecheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ImportRecheckPayload{}, err
	}
	return payload, nil
}
