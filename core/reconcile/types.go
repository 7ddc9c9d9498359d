package reconcile

// CandidateFile is a file discovered during the walk and assigned to an area.
// It is never mutated after enumeration.
type CandidateFile struct {
	// Path is the absolute path of the file, below the resolved walk root.
	Path string `json:"path"`

	// RelPath is Path with the walk root stripped, slash separated.
	RelPath string `json:"rel_path"`

	// Area is the name of the owning area.
	Area string `json:"area"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Key is the canonical key, empty when the path carries no signature.
	Key string `json:"key,omitempty"`
}

// RemovalList is the ordered list of files tagged for removal.
type RemovalList []CandidateFile

// Paths returns the absolute paths in list order.
func (l RemovalList) Paths() []string {
	paths := make([]string, len(l))
	for i, f := range l {
		paths[i] = f.Path
	}
	return paths
}

// Bytes returns the summed size of the list.
func (l RemovalList) Bytes() int64 {
	var total int64
	for _, f := range l {
		total += f.Size
	}
	return total
}

// Statistics aggregates counts and sizes for a scan.
type Statistics struct {
	// TotalFiles counts every classified file.
	TotalFiles int `json:"total_files"`

	// TotalBytes sums the size of every classified file.
	TotalBytes int64 `json:"total_bytes"`

	// RemovedFiles counts files tagged for removal.
	RemovedFiles int `json:"removed_files"`

	// RemovedBytes sums the size of files tagged for removal.
	RemovedBytes int64 `json:"removed_bytes"`
}

func (s *Statistics) record(size int64, tagged bool) {
	s.TotalFiles++
	s.TotalBytes += size
	if tagged {
		s.RemovedFiles++
		s.RemovedBytes += size
	}
}

// AreaStatistics holds the statistics of a single area.
type AreaStatistics struct {
	Area string `json:"area"`
	Statistics
}

// Options configures a scan and the removal that may follow it.
type Options struct {
	// Root is the directory to walk.
	Root string

	// Include lists the enabled areas in classification order.
	// Empty means every area of the table.
	Include []string

	// Limit caps the number of classified files. Zero or negative is unbounded.
	Limit int

	// CaseInsensitive lower-cases keys before the membership check.
	CaseInsensitive bool

	// ShowPaths requests verbose per-file reporting.
	ShowPaths bool

	// DryRun prevents removal. It defaults to true at every entry point.
	DryRun bool

	// Confirmed is set once the operator accepted the removal.
	// Removal never runs unless DryRun is false and Confirmed is true.
	Confirmed bool

	// Areas is the area table. Nil means DefaultAreas.
	Areas *AreaTable
}

func (o Options) areaTable() *AreaTable {
	if o.Areas != nil {
		return o.Areas
	}
	return DefaultAreas()
}

// Enumeration is the output of the walk: classified candidates grouped by area.
type Enumeration struct {
	// Root is the walk root the candidates are relative to.
	Root string

	// Areas are the enabled areas, in classification order.
	Areas []Area

	// Files holds the candidates of Areas[i] at index i, in walk order.
	Files [][]CandidateFile

	// Warnings collects recoverable problems hit during the walk.
	Warnings []string

	// Interrupted is set when the walk was stopped by cancellation.
	Interrupted bool
}

// Len returns the number of classified files.
func (e *Enumeration) Len() int {
	n := 0
	for _, files := range e.Files {
		n += len(files)
	}
	return n
}

// Plan is the result of a scan: what would be removed and why.
type Plan struct {
	// Root is the scanned directory.
	Root string `json:"root"`

	// Removals lists the files tagged for removal.
	Removals RemovalList `json:"removals"`

	// Stats are the aggregate statistics of the scan.
	Stats Statistics `json:"stats"`

	// Areas breaks Stats down per enabled area.
	Areas []AreaStatistics `json:"areas"`

	// References is the size of the reference set the scan checked against.
	References int `json:"references"`

	// Warnings collects recoverable problems (unknown areas, vanished files).
	Warnings []string `json:"warnings"`

	// Interrupted is set when the scan was cancelled before completion.
	Interrupted bool `json:"interrupted"`
}

// RemovalResult reports the outcome of a removal run.
type RemovalResult struct {
	// Removed counts files deleted.
	Removed int `json:"removed"`

	// RemovedBytes sums the size of deleted files.
	RemovedBytes int64 `json:"removed_bytes"`

	// Failed lists the files whose delete call failed.
	Failed []*DeletionError `json:"-"`

	// Skipped counts files never attempted because of cancellation.
	Skipped int `json:"skipped"`
}

// FailedPaths returns the paths of failed deletions.
func (r *RemovalResult) FailedPaths() []string {
	paths := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		paths[i] = f.Path
	}
	return paths
}

// Phase names the stage a progress event belongs to.
type Phase string

const (
	PhaseScan   Phase = "scan"
	PhaseRemove Phase = "remove"
)

// Event is a progress update emitted once per processed file.
type Event struct {
	Phase   Phase
	Current int
	Total   int

	// Path, Key and Size describe the file that was just processed.
	Path string
	Key  string
	Size int64

	// Tagged is set during the scan when the file was tagged for removal.
	Tagged bool

	// RemovedFiles and RemovedBytes are running totals. During the scan they
	// count tagged files, during removal they count deleted files.
	RemovedFiles int
	RemovedBytes int64

	// Err is set during removal when the delete failed.
	Err error
}

// Observer receives progress events. Events are informational only; the
// authoritative numbers are in Plan and RemovalResult.
type Observer interface {
	OnProgress(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnProgress(e Event) { f(e) }

// NopObserver discards every event.
var NopObserver Observer = ObserverFunc(func(Event) {})

// State is the lifecycle state of an Engine.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateAwaitingConfirmation
	StateRemoving
	StateReported
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateRemoving:
		return "removing"
	case StateReported:
		return "reported"
	default:
		return "idle"
	}
}
