package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scriptforge/internal/continuity"
	"scriptforge/internal/logging"
	"scriptforge/internal/project"
	"scriptforge/internal/prompt"
	"scriptforge/internal/textutil"
	"scriptforge/internal/window"
)

// Completer executes one generation request.
type Completer interface {
	Complete(ctx context.Context, promptText string, temperature float64, model string) (string, error)
}

// StateStore is the Project Store the pipeline reads from and writes to.
type StateStore interface {
	Snapshot() project.ApplicationState
	Mutate(ctx context.Context, fn func(project.ApplicationState) (project.ApplicationState, error)) (project.ApplicationState, error)
}

// Service is the batch sequencer. It assembles outline and batch requests,
// runs them through the Completer and writes results back to the store.
type Service struct {
	store    StateStore
	client   Completer
	renderer *prompt.Renderer
	settings Settings
	logger   *slog.Logger
	guard    *guard
	now      func() time.Time
}

// Option customizes the service.
type Option func(*Service)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the sequencer.
func NewService(store StateStore, client Completer, renderer *prompt.Renderer, settings Settings, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		client:   client,
		renderer: renderer,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		guard:    newGuard(settings.LockDir),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// EpisodeRange returns the episodes covered by the batch at index.
func (s *Service) EpisodeRange(index int) window.EpisodeRange {
	return window.ForBatch(index, s.settings.BatchWidth)
}

// NextSequenceIndex returns the default index to continue generation with.
func (s *Service) NextSequenceIndex(p project.Project) int {
	return p.NextSequenceIndex()
}

// BatchRequest is an assembled batch request.
type BatchRequest struct {
	Index      int
	Episodes   window.EpisodeRange
	Window     window.Range
	SourceLen  int
	Continuity continuity.Context
	Prompt     string
}

// RequestOutline generates the outline for a project and replaces the stored
// outline on success. On failure the stored outline is untouched.
func (s *Service) RequestOutline(ctx context.Context, projectID string) (project.Project, error) {
	ctx = logging.WithProjectID(ctx, projectID)
	logger := logging.WithContext(ctx, s.logger)

	release, err := s.guard.acquire(projectID)
	if err != nil {
		return project.Project{}, err
	}
	defer release()

	p, err := s.project(projectID)
	if err != nil {
		return project.Project{}, err
	}
	primary, ok := p.Selected(project.RolePrimarySource)
	if !ok {
		return project.Project{}, &MissingSelectionError{Role: project.RolePrimarySource}
	}
	layout, _ := p.Selected(project.RoleLayoutTemplate)
	style, _ := p.Selected(project.RoleStyleTemplate)

	source := primary.Content
	if s.settings.OutlineSourceLimit > 0 {
		source = textutil.HeadRunes(source, s.settings.OutlineSourceLimit)
	}
	text, err := s.renderer.Outline(prompt.OutlineData{
		ModeLabel: p.Mode.Label(),
		Source:    source,
		Layout:    layout.Content,
		Style:     style.Content,
	})
	if err != nil {
		return project.Project{}, err
	}

	logger.Info("outline generation started",
		logging.String("source", primary.Name),
		logging.Int("source_chars", textutil.RuneLen(source)),
		logging.Int("prompt_chars", textutil.RuneLen(text)),
	)
	started := s.now()
	outline, err := s.client.Complete(ctx, text, s.settings.Temperature, s.settings.Model)
	if err != nil {
		logging.WarnWithContext(logger, "outline generation failed", "outline_generation_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "existing outline kept"),
		)
		return project.Project{}, fmt.Errorf("generate outline: %w", err)
	}

	state, err := s.store.Mutate(ctx, func(st project.ApplicationState) (project.ApplicationState, error) {
		return st.SetOutline(projectID, outline)
	})
	if err != nil {
		return project.Project{}, fmt.Errorf("store outline: %w", err)
	}
	logger.Info("outline generation completed",
		logging.Int("outline_chars", textutil.RuneLen(outline)),
		logging.Duration("elapsed", s.now().Sub(started)),
	)
	updated, _ := state.Project(projectID)
	return updated, nil
}

// BuildBatchRequest assembles the request for the batch at index without
// sending it.
func (s *Service) BuildBatchRequest(p project.Project, index int) (BatchRequest, error) {
	if index < 1 {
		return BatchRequest{}, fmt.Errorf("%w: sequence index must be >= 1, got %d", project.ErrInvalidInput, index)
	}
	primary, ok := p.Selected(project.RolePrimarySource)
	if !ok {
		return BatchRequest{}, &MissingSelectionError{Role: project.RolePrimarySource}
	}
	if p.Outline == "" {
		return BatchRequest{}, &MissingOutlineError{ProjectID: p.ID}
	}
	style, _ := p.Selected(project.RoleStyleTemplate)

	episodes := s.EpisodeRange(index)
	calc := window.Calculator{
		AssumedTotalEpisodes: s.settings.AssumedTotalEpisodes,
		WindowSize:           s.settings.WindowSize,
		Backtrack:            s.settings.WindowBacktrack,
	}
	excerpt, rng := calc.Slice(primary.Content, episodes.First)

	prior := p.CompletedBefore(index)
	contents := make([]string, 0, len(prior))
	for _, b := range prior {
		contents = append(contents, b.Content)
	}
	summary := ""
	if len(prior) > 0 {
		summary = continuity.ExtractSummary(prior[len(prior)-1].Content, s.settings.SummaryMarker)
	}
	carrier := continuity.Carrier{ContextChars: s.settings.ContinuityChars, HandoffChars: s.settings.HandoffChars}
	carried := carrier.Carry(contents, summary)

	text, err := s.renderer.Batch(prompt.BatchData{
		ModeLabel:     p.Mode.Label(),
		First:         episodes.First,
		Last:          episodes.Last,
		Summary:       carried.SummaryOrOpening(),
		PhasePlan:     p.Outline,
		Source:        excerpt,
		Handoff:       carried.Handoff,
		Style:         style.Content,
		SummaryMarker: s.settings.SummaryMarker,
	})
	if err != nil {
		return BatchRequest{}, err
	}
	return BatchRequest{
		Index:      index,
		Episodes:   episodes,
		Window:     rng,
		SourceLen:  textutil.RuneLen(primary.Content),
		Continuity: carried,
		Prompt:     text,
	}, nil
}

// RequestBatch generates the batch at index. Success replaces any batch stored
// at that index and advances the highest completed index. Failure leaves a
// stored batch untouched; an empty index records a failed batch.
func (s *Service) RequestBatch(ctx context.Context, projectID string, index int) (project.GenerationBatch, error) {
	ctx = logging.WithSequenceIndex(logging.WithProjectID(ctx, projectID), index)
	logger := logging.WithContext(ctx, s.logger)

	release, err := s.guard.acquire(projectID)
	if err != nil {
		return project.GenerationBatch{}, err
	}
	defer release()

	p, err := s.project(projectID)
	if err != nil {
		return project.GenerationBatch{}, err
	}
	req, err := s.BuildBatchRequest(p, index)
	if err != nil {
		return project.GenerationBatch{}, err
	}

	logger.Info("batch generation started",
		logging.String("episodes", req.Episodes.String()),
		logging.Int("window_start", req.Window.Start),
		logging.Int("window_end", req.Window.End),
		logging.Int("source_chars", req.SourceLen),
		logging.Bool("has_prior", req.Continuity.HasPrior),
		logging.Int("prompt_chars", textutil.RuneLen(req.Prompt)),
	)
	started := s.now()
	content, genErr := s.client.Complete(ctx, req.Prompt, s.settings.Temperature, s.settings.Model)
	if genErr != nil {
		s.recordFailure(ctx, logger, projectID, index, genErr)
		return project.GenerationBatch{}, fmt.Errorf("generate batch %d (episodes %s): %w", index, req.Episodes, genErr)
	}

	var stored project.GenerationBatch
	_, err = s.store.Mutate(ctx, func(st project.ApplicationState) (project.ApplicationState, error) {
		next, batch, err := st.PutBatch(projectID, index, content, s.now())
		stored = batch
		return next, err
	})
	if err != nil {
		return project.GenerationBatch{}, fmt.Errorf("store batch %d: %w", index, err)
	}
	logger.Info("batch generation completed",
		logging.String("episodes", req.Episodes.String()),
		logging.Int("content_chars", textutil.RuneLen(content)),
		logging.Bool("summary_found", continuity.ExtractSummary(content, s.settings.SummaryMarker) != ""),
		logging.Duration("elapsed", s.now().Sub(started)),
	)
	return stored, nil
}

func (s *Service) recordFailure(ctx context.Context, logger *slog.Logger, projectID string, index int, genErr error) {
	recorded := false
	_, err := s.store.Mutate(ctx, func(st project.ApplicationState) (project.ApplicationState, error) {
		next, ok, err := st.RecordFailure(projectID, index, genErr.Error(), s.now())
		recorded = ok
		return next, err
	})
	impact := "existing batch kept"
	if recorded {
		impact = "failed batch recorded"
	}
	logging.WarnWithContext(logger, "batch generation failed", "batch_generation_failed",
		logging.Error(genErr),
		logging.String(logging.FieldImpact, impact),
	)
	if err != nil {
		logging.WarnWithContext(logger, "failed to record batch failure", "batch_failure_record_failed",
			logging.Error(err),
		)
	}
}

func (s *Service) project(id string) (project.Project, error) {
	p, ok := s.store.Snapshot().Project(id)
	if !ok {
		return project.Project{}, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	return p, nil
}
