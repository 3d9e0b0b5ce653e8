package replicate

import (
	"context"
	"fmt"

	"scenerender/internal/domain"
)

type pollState int

const (
	stateSubmitted pollState = iota
	statePolling
	stateSucceeded
	stateFailed
	stateTimedOut
)

func stateFor(status domain.JobStatus) pollState {
	switch status {
	case domain.JobStatusSucceeded:
		return stateSucceeded
	case domain.JobStatusFailed:
		return stateFailed
	default:
		return statePolling
	}
}

// await drives a submitted job to a terminal state. Each polling iteration
// is one delay followed by one status fetch. A failed fetch still consumes
// an attempt.
func (c *Client) await(ctx context.Context, job domain.GenerationJob) (domain.GenerationJob, error) {
	state := stateSubmitted
	attempts := 0
	for {
		switch state {
		case stateSubmitted:
			state = stateFor(job.Status)

		case statePolling:
			if attempts >= c.maxAttempts {
				state = stateTimedOut
				continue
			}
			if err := c.sleep(ctx, c.interval); err != nil {
				return job, fmt.Errorf("replicate: prediction %s: %w", job.ID, err)
			}
			attempts++
			next, err := c.fetch(ctx, job.ID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return job, fmt.Errorf("replicate: prediction %s: %w", job.ID, ctxErr)
				}
				c.logger.Warn().Err(err).Str("prediction_id", job.ID).Int("attempt", attempts).Msg("replicate: status fetch failed, retrying")
				continue
			}
			next.ID = job.ID
			job = next
			state = stateFor(job.Status)

		case stateSucceeded:
			if job.OutputURL == "" {
				return job, &domain.GenerationFailure{Provider: providerName, JobID: job.ID, Detail: "prediction succeeded without output"}
			}
			c.logger.Debug().Str("prediction_id", job.ID).Int("attempts", attempts).Msg("replicate: prediction succeeded")
			return job, nil

		case stateFailed:
			detail := job.Error
			if detail == "" {
				detail = "prediction failed"
			}
			return job, &domain.GenerationFailure{Provider: providerName, JobID: job.ID, Detail: detail}

		case stateTimedOut:
			return job, fmt.Errorf("replicate: prediction %s still %s after %d attempts: %w", job.ID, job.Status, attempts, domain.ErrGenerationTimeout)
		}
	}
}
