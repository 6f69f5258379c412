package cron

import (
	"fmt"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

// Evaluator computes cron fire times in a schedule's timezone. It keeps no
// per-schedule state; each call parses the expression it is given.
type Evaluator struct {
	parser cronlib.Parser
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		parser: cronlib.NewParser(
			cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
		),
	}
}

// NextRun returns the first fire time of the expression after the given
// instant. An empty timezone means UTC; the default is applied before the
// location is loaded so the schedule itself is evaluated in UTC.
func (e *Evaluator) NextRun(expression, timezone string, after time.Time) (time.Time, error) {
	if timezone == "" {
		timezone = "UTC"
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	schedule, err := e.parser.Parse(expression)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", expression, err)
	}

	return schedule.Next(after.In(loc)), nil
}

func (e *Evaluator) Validate(expression string) error {
	_, err := e.parser.Parse(expression)
	return err
}
