package store

// Artifact is one cached compile result.
type Artifact struct {
	Key            string // ir.ArtifactKey of the raw program, backend and params
	ProgramHash    string // ir.ProgramHash of the raw program
	Backend        string
	Params         string // canonical JSON of the settings in the key
	Code           string
	RawNodes       int
	OptimizedNodes int
	Seq            int64
}

// Run records one compile invocation.
type Run struct {
	ID          string
	ArtifactKey string
	InputPath   string
	OutputPath  string
	CacheHit    bool
	Seq         int64
}
