package telemetry

import "sync"

type Report struct {
	Id     string
	Params []any
}

// Recorder is an API that keeps every report in memory, it exists so tests
// can assert that a component reported (or didn't report) something.
type Recorder struct {
	mutex    sync.Mutex
	Broken   []Report
	Warnings []Report
	Counts   map[string]int64
}

func NewRecorder() *Recorder {
	return &Recorder{Counts: map[string]int64{}}
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Broken = append(r.Broken, Report{Id: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Warnings = append(r.Warnings, Report{Id: id, Params: params})
}

func (r *Recorder) ReportDebug(string, ...any) {}

func (r *Recorder) ReportCount(id string, count int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Counts[id] = count
}

// BrokenIds returns the ids of every ReportBroken call in order.
func (r *Recorder) BrokenIds() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	ids := make([]string, len(r.Broken))
	for i, b := range r.Broken {
		ids[i] = b.Id
	}
	return ids
}
