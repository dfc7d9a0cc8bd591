package domain

import "time"

// ItemState tracks how far a discovered note advanced through the pipeline.
type ItemState string

const (
	StateDiscovered     ItemState = "discovered"
	StateContentFetched ItemState = "content_fetched"
	StateRewritten      ItemState = "rewritten"
	StateDecomposed     ItemState = "decomposed"
	StateSynthesized    ItemState = "synthesized"
	StatePersisted      ItemState = "persisted"
	StateSkipped        ItemState = "skipped"
)

// Stage names one pipeline step. A skipped item records the stage it
// stopped at.
type Stage string

const (
	StageSearch     Stage = "search"
	StageFetch      Stage = "fetch"
	StageRewrite    Stage = "rewrite"
	StageDecompose  Stage = "decompose"
	StageSynthesize Stage = "synthesize"
	StagePersist    Stage = "persist"
)

// SourceItem is one discovered note. It is immutable after discovery and
// read-only for every downstream stage.
type SourceItem struct {
	ID             string `json:"note_id"`
	Title          string `json:"note_display_title"`
	URL            string `json:"note_url"`
	AuthorName     string `json:"author_nick_name"`
	AuthorID       string `json:"author_user_id"`
	AuthorAvatar   string `json:"author_avatar"`
	AuthorHomePage string `json:"author_home_page_url"`
	LikedCount     string `json:"note_liked_count"`
	CoverURL       string `json:"note_cover_url"`
	CoverWidth     string `json:"note_cover_width"`
	CoverHeight    string `json:"note_cover_height"`
	ModelType      string `json:"note_model_type"`
	CardType       string `json:"note_card_type"`
	XsecToken      string `json:"note_xsec_token"`
	Liked          bool   `json:"note_liked"`
	HasVideo       bool   `json:"note_has_video"`
}

// RetrievedContent is the raw page content of one note. It lives only for
// the duration of that item's pipeline run; only its derivative is persisted.
type RetrievedContent struct {
	Title       string
	Description string
	VideoURL    string
}

// Scene is one fixed-duration unit of a storyboard, the unit of synthesis
// work. Scene order is temporal video order and must be preserved.
type Scene struct {
	ID               string   `json:"scene_id"`
	Title            string   `json:"scene_title"`
	Description      string   `json:"scene_description"`
	DurationSeconds  int      `json:"duration"`
	VisualElements   []string `json:"visual_elements"`
	TextOverlay      string   `json:"text_overlay"`
	BackgroundMusic  string   `json:"background_music"`
	TransitionEffect string   `json:"transition_effect"`
}

// SynthesisStatus is the terminal status of one scene's synthesis attempt.
type SynthesisStatus string

const (
	SynthesisSuccess SynthesisStatus = "success"
	SynthesisFailed  SynthesisStatus = "failed"
)

// SynthesisOutcome is the result of synthesizing exactly one scene. Outcomes
// for sibling scenes are independent of each other.
type SynthesisOutcome struct {
	SceneID      string          `json:"scene_id"`
	Status       SynthesisStatus `json:"status"`
	VideoURL     string          `json:"video_url,omitempty"`
	VideoPath    string          `json:"video_path,omitempty"`
	Elapsed      time.Duration   `json:"elapsed,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// ItemResult aggregates everything produced for one item that made it past
// fetch and rewrite. Scenes and Outcomes hold the same order.
type ItemResult struct {
	Item           SourceItem         `json:"item"`
	RewrittenText  string             `json:"rewritten_text"`
	Scenes         []Scene            `json:"scenes"`
	Outcomes       []SynthesisOutcome `json:"outcomes"`
	RawSaved       bool               `json:"raw_saved"`
	ProcessedSaved bool               `json:"processed_saved"`
}

// ItemOutcome is either a result or a skip record for one discovered item.
// Items that fail fetch or rewrite carry a nil Result.
type ItemOutcome struct {
	Item         SourceItem  `json:"item"`
	State        ItemState   `json:"state"`
	SkippedStage Stage       `json:"skipped_stage,omitempty"`
	SkipReason   string      `json:"skip_reason,omitempty"`
	Result       *ItemResult `json:"result,omitempty"`
}

// Skipped reports whether the item stopped before producing a result.
func (o ItemOutcome) Skipped() bool {
	return o.State == StateSkipped
}

// RunReport is the terminal artifact of one orchestrator invocation,
// immutable once returned. Items holds one entry per discovered item in
// discovery order.
type RunReport struct {
	RunID            string        `json:"run_id"`
	Keyword          string        `json:"keyword"`
	Items            []ItemOutcome `json:"items"`
	Success          bool          `json:"success"`
	Message          string        `json:"message"`
	TotalScenes      int           `json:"total_scenes"`
	SuccessfulScenes int           `json:"successful_scenes"`
	FailedScenes     int           `json:"failed_scenes"`
}

// EventType classifies run progress events.
type EventType string

const (
	EventItemStarted   EventType = "item_started"
	EventItemSkipped   EventType = "item_skipped"
	EventItemCompleted EventType = "item_completed"
	EventRunCompleted  EventType = "run_completed"
)

// RunEvent is one progress notification emitted while a run executes.
type RunEvent struct {
	RunID   string    `json:"run_id"`
	Type    EventType `json:"type"`
	NoteID  string    `json:"note_id,omitempty"`
	Stage   Stage     `json:"stage,omitempty"`
	Message string    `json:"message,omitempty"`
}
