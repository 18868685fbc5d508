package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fusionfit/storefront/pkg/logger"
)

// failedJobDoc is the shape persisted to the failed_jobs collection.
type failedJobDoc struct {
	Type     string    `bson:"type"`
	Payload  string    `bson:"payload"`
	Error    string    `bson:"error"`
	Attempts int       `bson:"attempts"`
	FailedAt time.Time `bson:"failedAt"`
}

var failedCol *mongo.Collection

// SetFailedJobsCollection enables durable storage of jobs that exhausted
// their retries. Without it, failures are only kept in memory.
func SetFailedJobsCollection(col *mongo.Collection) {
	defaultManager.mu.Lock()
	failedCol = col
	defaultManager.mu.Unlock()
}

func (m *Manager) persistFailed(job Job, typeName string, err error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Job:      job,
		Err:      err,
		FailedAt: time.Now(),
		Attempts: attempts,
	})
	col := failedCol
	m.mu.Unlock()

	if col == nil {
		return
	}

	payload, merr := json.Marshal(job)
	if merr != nil {
		payload = []byte(fmt.Sprintf("%+v", job))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, ierr := col.InsertOne(ctx, failedJobDoc{
		Type:     typeName,
		Payload:  string(payload),
		Error:    err.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	})
	if ierr != nil {
		logger.Error("queue: persist failed job", "type", typeName, "error", ierr)
	}
}
