package ingest

import (
	"context"

	"ctkirep/internal/store"
)

// resolver holds the per-run lookup tables built from the store before any
// row is processed. Each orchestrator invocation constructs its own resolver;
// nothing is shared across runs, so a roster edit is visible to the next run.
type resolver struct {
	studentsByReading map[string]store.Student
	studentsByPT      map[string]store.Student
	readingActivities map[string]store.ReadingActivity
	activityTypes     map[string]store.ACEActivityType
	aceActivities     map[string]store.ACEActivity
	statuses          map[string]store.ACEStatus
}

// newReadingResolver preloads the lookups the reading time path needs.
func newReadingResolver(ctx context.Context, st *store.Store) (*resolver, error) {
	r := &resolver{}
	students, err := st.Students(ctx)
	if err != nil {
		return nil, err
	}
	r.studentsByReading = make(map[string]store.Student, len(students))
	for _, student := range students {
		r.studentsByReading[student.ReadingUsername] = student
	}

	activities, err := st.ReadingActivities(ctx)
	if err != nil {
		return nil, err
	}
	r.readingActivities = make(map[string]store.ReadingActivity, len(activities))
	for _, activity := range activities {
		r.readingActivities[activity.Name] = activity
	}
	return r, nil
}

// newProgressResolver preloads the lookups both progress test paths need.
func newProgressResolver(ctx context.Context, st *store.Store) (*resolver, error) {
	r := &resolver{}
	students, err := st.Students(ctx)
	if err != nil {
		return nil, err
	}
	r.studentsByPT = make(map[string]store.Student, len(students))
	for _, student := range students {
		r.studentsByPT[student.PTUsername] = student
	}

	types, err := st.ACEActivityTypes(ctx)
	if err != nil {
		return nil, err
	}
	r.activityTypes = make(map[string]store.ACEActivityType, len(types))
	for _, at := range types {
		r.activityTypes[at.Name] = at
	}

	activities, err := st.ACEActivities(ctx)
	if err != nil {
		return nil, err
	}
	r.aceActivities = make(map[string]store.ACEActivity, len(activities))
	for _, activity := range activities {
		r.aceActivities[activity.Name] = activity
	}

	statuses, err := st.ACEStatuses(ctx)
	if err != nil {
		return nil, err
	}
	r.statuses = make(map[string]store.ACEStatus, len(statuses))
	for _, status := range statuses {
		r.statuses[status.Name] = status
	}
	return r, nil
}

func (r *resolver) studentByReadingUsername(username string) (store.Student, error) {
	student, ok := r.studentsByReading[username]
	if !ok {
		return store.Student{}, unknownReference("username", username)
	}
	return student, nil
}

func (r *resolver) studentByPTUsername(username string) (store.Student, error) {
	student, ok := r.studentsByPT[username]
	if !ok {
		return store.Student{}, unknownReference("username", username)
	}
	return student, nil
}

func (r *resolver) readingActivity(name string) (store.ReadingActivity, error) {
	activity, ok := r.readingActivities[name]
	if !ok {
		return store.ReadingActivity{}, unknownReference("reading activity", name)
	}
	return activity, nil
}

func (r *resolver) activityType(name string) (store.ACEActivityType, error) {
	at, ok := r.activityTypes[name]
	if !ok {
		return store.ACEActivityType{}, unknownReference("activity type", name)
	}
	return at, nil
}

func (r *resolver) aceActivity(name string) (store.ACEActivity, error) {
	activity, ok := r.aceActivities[name]
	if !ok {
		return store.ACEActivity{}, unknownReference("activity", name)
	}
	return activity, nil
}

func (r *resolver) status(name string) (store.ACEStatus, error) {
	status, ok := r.statuses[name]
	if !ok {
		return store.ACEStatus{}, unknownReference("status", name)
	}
	return status, nil
}
