package exec

import "minidb/pkg/dblog"

// Journal is an explicit log of compensating actions pushed during forward
// progress of a DDL statement, generalizing the exception-unwinding of the
// engine this system descends from (spec §9: "re-architect as an explicit
// journal of compensating actions pushed during forward progress and
// drained in reverse on error"). Each action is best-effort: its own
// failure is logged but never replaces the error that triggered the
// unwind (spec §4.7: "each compensating delete is best-effort").
type Journal struct {
	actions []func() error
}

// Push records a compensating action to run, in reverse order, if Unwind
// is called.
func (j *Journal) Push(action func() error) {
	j.actions = append(j.actions, action)
}

// Unwind drains every pushed action, most recent first.
func (j *Journal) Unwind() {
	for i := len(j.actions) - 1; i >= 0; i-- {
		if err := j.actions[i](); err != nil {
			dblog.Logger().Warn("rollback action failed", "error", err)
		}
	}
}
