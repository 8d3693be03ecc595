package domain

// Stage identifies how far a pipeline run progressed.
type Stage string

const (
	StageUnknown  Stage = "unknown"
	StageValidate Stage = "validate"
	StageGate     Stage = "gate"
	StagePrompt   Stage = "prompt"
	StageGenerate Stage = "generate"
	StageStore    Stage = "store"
	StageCatalog  Stage = "catalog"
	StageDone     Stage = "done"
)

// ArtifactRef is the stable reference to a stored artifact. It deliberately
// carries no URL so catalog records stay independent of storage naming.
type ArtifactRef struct {
	StorageKey  string `json:"storage_key"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
}

// AttemptCounts records how many attempts each retried stage consumed.
type AttemptCounts struct {
	Generation int `json:"generation_attempts"`
	Storage    int `json:"storage_attempts"`
}

// Result summarises one pipeline run. It is returned to the invoker and never
// persisted by the pipeline.
type Result struct {
	ItemID         string
	ItemName       string
	Success        bool
	Skipped        bool
	Stage          Stage
	Artifact       *ArtifactRef
	Err            error
	Message        string
	Attempts       AttemptCounts
	Retryable      bool
	CreationSource string
	PromptType     string
}
