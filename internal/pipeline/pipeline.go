package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/randoapp/rando-service/internal/apperr"
	"github.com/randoapp/rando-service/internal/metrics"
	"github.com/randoapp/rando-service/internal/model"
	"github.com/randoapp/rando-service/internal/response"
)

// Collaborator contracts. The orchestrator owns sequencing and join
// policy; everything with I/O hides behind one of these.

type IdentityGenerator interface {
	Generate() (string, model.ImagePaths, error)
}

type Stager interface {
	Abs(rel string) string
	MoveIn(inboundPath, originRel string) error
	Reap(ctx context.Context, rels ...string) error
}

type Resizer interface {
	Resize(ctx context.Context, sc model.SizeClass, originRel, targetRel string) error
}

type Recognizer interface {
	Recognize(ctx context.Context, imagePath string, enabled []string) ([]string, error)
}

type Publisher interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type MapResolver interface {
	Resolve(loc *model.Location, ip string) model.SizeURLs
}

type Persister interface {
	Insert(ctx context.Context, rando *model.Rando) error
	PushToUserOut(ctx context.Context, email string, rando *model.Rando) error
}

// Deps wires an Orchestrator.
type Deps struct {
	Identity        IdentityGenerator
	Stager          Stager
	Resizer         Resizer
	Recognizer      Recognizer
	Publisher       Publisher
	Maps            MapResolver
	Persister       Persister
	Projector       *response.Projector
	EnabledScanners []string
	RunTimeout      time.Duration
	Log             *zap.SugaredLogger
	Now             func() time.Time
}

// Orchestrator drives one upload through the stage sequence
// validate, generate-identity, stage-upload, resize, recognize,
// publish, cleanup, persist, project-response. Resize and publish fan
// out over the three size classes and fail fast; cleanup fans out over
// the four local files and only warns; recognize can never fail a run.
type Orchestrator struct {
	deps Deps
	now  func() time.Time
}

func New(deps Deps) *Orchestrator {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{deps: deps, now: now}
}

const (
	stageValidate  = "validate"
	stageIdentity  = "generate-identity"
	stageStage     = "stage-upload"
	stageResize    = "resize"
	stageRecognize = "recognize"
	stagePublish   = "publish"
	stageCleanup   = "cleanup"
	stagePersist   = "persist"
	stageProject   = "project-response"
)

// runState is the accumulated output of the stages so far. Each stage
// receives it by value and returns an updated copy, so no stage can
// mutate what an earlier stage produced.
type runState struct {
	owner       model.Owner
	inboundPath string
	location    *model.Location
	randoID     string
	paths       model.ImagePaths
	tags        []string
	imageURLs   model.SizeURLs
	rando       *model.Rando
	resp        *response.PostImage
}

// SaveImage runs the full pipeline for one upload and returns the
// public payload. The first hard failure short-circuits every later
// stage and comes back wrapped as a System error; IncorrectArgs is
// returned before any side effect.
func (o *Orchestrator) SaveImage(ctx context.Context, owner model.Owner, inboundPath string, loc *model.Location) (*response.PostImage, error) {
	start := o.now()
	defer func() {
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()
	if o.deps.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.deps.RunTimeout)
		defer cancel()
	}

	log := o.deps.Log.With("owner", owner.Email)
	log.Debugw("save image", "inbound", inboundPath, "location", loc)

	st := runState{owner: owner, inboundPath: inboundPath, location: loc}
	stages := []struct {
		name string
		run  func(context.Context, runState) (runState, error)
	}{
		{stageValidate, o.validate},
		{stageIdentity, o.generateIdentity},
		{stageStage, o.stageUpload},
		{stageResize, o.resize},
		{stageRecognize, o.recognize},
		{stagePublish, o.publish},
		{stageCleanup, o.cleanup},
		{stagePersist, o.persist},
		{stageProject, o.projectResponse},
	}
	for _, stage := range stages {
		next, err := stage.run(ctx, st)
		if err != nil {
			metrics.StageTotal.WithLabelValues(stage.name, "error").Inc()
			log.Warnw("pipeline failed", "stage", stage.name, "err", err)
			return nil, err
		}
		metrics.StageTotal.WithLabelValues(stage.name, "ok").Inc()
		st = next
	}
	log.Debugw("save image done", "randoId", st.randoID)
	return st.resp, nil
}

func (o *Orchestrator) validate(_ context.Context, st runState) (runState, error) {
	if st.inboundPath == "" || st.location == nil {
		return st, apperr.ErrIncorrectArgs
	}
	return st, nil
}

func (o *Orchestrator) generateIdentity(_ context.Context, st runState) (runState, error) {
	id, paths, err := o.deps.Identity.Generate()
	if err != nil {
		return st, apperr.System(err)
	}
	st.randoID = id
	st.paths = paths
	return st, nil
}

func (o *Orchestrator) stageUpload(_ context.Context, st runState) (runState, error) {
	if err := o.deps.Stager.MoveIn(st.inboundPath, st.paths.Origin); err != nil {
		return st, apperr.System(err)
	}
	return st, nil
}

// resize produces the three variants concurrently. The first failure
// cancels the group; siblings see the cancelled context and stop.
func (o *Orchestrator) resize(ctx context.Context, st runState) (runState, error) {
	g, gctx := errgroup.WithContext(ctx)
	for _, sc := range model.SizeClasses() {
		g.Go(func() error {
			return o.deps.Resizer.Resize(gctx, sc, st.paths.Origin, st.paths.ForSize(sc))
		})
	}
	if err := g.Wait(); err != nil {
		return st, apperr.System(err)
	}
	return st, nil
}

// recognize never fails the run: any scanner error downgrades to an
// empty tag list and a warning.
func (o *Orchestrator) recognize(ctx context.Context, st runState) (runState, error) {
	tags, err := o.deps.Recognizer.Recognize(ctx, o.deps.Stager.Abs(st.paths.Small), o.deps.EnabledScanners)
	if err != nil {
		o.deps.Log.Warnw("recognition skipped", "owner", st.owner.Email, "randoId", st.randoID, "err", err)
		metrics.StageTotal.WithLabelValues(stageRecognize, "degraded").Inc()
		tags = []string{}
	}
	st.tags = tags
	return st, nil
}

// publish uploads the three variants concurrently, fail-fast. On abort
// the variants that did reach the store are best-effort deleted so a
// failed run leaves no orphaned public objects.
func (o *Orchestrator) publish(ctx context.Context, st runState) (runState, error) {
	sizes := model.SizeClasses()
	var urls model.SizeURLs
	var published [3]bool

	g, gctx := errgroup.WithContext(ctx)
	for i, sc := range sizes {
		g.Go(func() error {
			key := st.paths.ForSize(sc)
			url, err := o.deps.Publisher.Upload(gctx, o.deps.Stager.Abs(key), key)
			if err != nil {
				return err
			}
			urls.SetForSize(sc, url)
			published[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.compensatePublish(st, sizes, published)
		return st, apperr.System(err)
	}
	st.imageURLs = urls
	return st, nil
}

// compensatePublish deletes already-published variants after a publish
// abort. Runs on a fresh context: the run context is already poisoned
// by the failure that got us here.
func (o *Orchestrator) compensatePublish(st runState, sizes []model.SizeClass, published [3]bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i, sc := range sizes {
		if !published[i] {
			continue
		}
		key := st.paths.ForSize(sc)
		if err := o.deps.Publisher.Delete(ctx, key); err != nil {
			o.deps.Log.Warnw("cannot delete partially published variant", "owner", st.owner.Email, "key", key, "err", err)
		}
	}
}

// cleanup reaps the four local temp files. Best-effort: the published
// record is already durable, so a leftover file is a warning, not a
// failed upload.
func (o *Orchestrator) cleanup(ctx context.Context, st runState) (runState, error) {
	if err := o.deps.Stager.Reap(ctx, st.paths.All()...); err != nil {
		o.deps.Log.Warnw("cleanup incomplete", "owner", st.owner.Email, "randoId", st.randoID, "err", err)
		metrics.StageTotal.WithLabelValues(stageCleanup, "degraded").Inc()
	}
	return st, nil
}

// persist writes the composed rando to the primary collection and the
// owner's out list concurrently. Both must succeed; when exactly one
// fails the projections disagree, so the record is flagged for
// reconciliation before the error goes up.
func (o *Orchestrator) persist(ctx context.Context, st runState) (runState, error) {
	mapURLs := o.deps.Maps.Resolve(st.location, st.owner.IP)
	rando := &model.Rando{
		RandoID:      st.randoID,
		OwnerEmail:   st.owner.Email,
		Creation:     o.now().UnixMilli(),
		Location:     st.location,
		ImageURL:     st.imageURLs.Large,
		ImageSizeURL: st.imageURLs,
		MapURL:       mapURLs.Large,
		MapSizeURL:   mapURLs,
		IP:           st.owner.IP,
		Tags:         st.tags,
	}

	var insertErr, pushErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		pushErr = o.deps.Persister.PushToUserOut(ctx, st.owner.Email, rando)
	}()
	insertErr = o.deps.Persister.Insert(ctx, rando)
	<-done

	if insertErr != nil || pushErr != nil {
		if (insertErr == nil) != (pushErr == nil) {
			missing := "rando collection"
			if insertErr == nil {
				missing = "owner out list"
			}
			o.deps.Log.Warnw("dual write diverged, record needs reconciliation",
				"owner", st.owner.Email, "randoId", st.randoID, "missing", missing)
		}
		err := insertErr
		if err == nil {
			err = pushErr
		}
		return st, apperr.System(err)
	}
	st.rando = rando
	return st, nil
}

func (o *Orchestrator) projectResponse(_ context.Context, st runState) (runState, error) {
	st.resp = o.deps.Projector.Project(st.rando)
	return st, nil
}
