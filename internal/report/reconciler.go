package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"gasreport/internal/blob"
	"gasreport/pkg/domain"
)

// Outcome summarises one save.
type Outcome struct {
	// InterventionID is the store identifier of the root. It is set as soon
	// as the root write succeeds, so a failed save still reports it.
	InterventionID string
	Mode           domain.SaveMode
	// Writes counts the repository and blob calls that succeeded.
	Writes int
	// SkippedPhotos holds one BlobUploadFailure per photo left out.
	SkippedPhotos []error
}

// Reconciler executes write plans against a Repository and a blob Store.
// Calls are issued one at a time; a child is never written before its
// parent's store identifier is known.
type Reconciler struct {
	repo    domain.Repository
	blobs   blob.Store
	logger  Logger
	metrics MetricsRecorder
	now     func() time.Time
}

// NewReconciler builds a reconciler. blobs may be nil, in which case every
// photo upload is skipped.
func NewReconciler(repo domain.Repository, blobs blob.Store, logger Logger, metrics MetricsRecorder) *Reconciler {
	if logger == nil {
		logger = noopLogger{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Reconciler{repo: repo, blobs: blobs, logger: logger, metrics: metrics, now: time.Now}
}

// Save writes tree according to mode and promotes every inserted entity to
// its store identifier in place. A repository failure stops the sequence
// and is returned as a RepositoryWriteFailure; earlier writes stay
// persisted. Photo upload failures are collected in the outcome.
func (r *Reconciler) Save(ctx context.Context, tree *Tree, mode domain.SaveMode) (Outcome, error) {
	start := r.now()
	out, err := r.save(ctx, tree, mode)
	op := "save." + string(mode)
	r.metrics.Observe(ctx, op, err == nil, r.now().Sub(start))
	if err != nil {
		r.logger.Error("report save aborted",
			"mode", string(mode),
			"intervention_id", out.InterventionID,
			"writes", out.Writes,
			"error", err)
		return out, err
	}
	r.logger.Info("report saved",
		"mode", string(mode),
		"intervention_id", out.InterventionID,
		"writes", out.Writes,
		"skipped_photos", len(out.SkippedPhotos))
	return out, nil
}

func (r *Reconciler) save(ctx context.Context, tree *Tree, mode domain.SaveMode) (Outcome, error) {
	out := Outcome{Mode: mode}
	plan, err := BuildPlan(tree, mode)
	if err != nil {
		return out, err
	}
	if mode == domain.SaveUpdateInPlace {
		out.InterventionID = plan.RootRef
	}
	// resolved maps tree identifiers at plan time to store identifiers.
	resolved := make(map[string]string, len(plan.Writes))
	for _, w := range plan.Writes {
		if err := ctx.Err(); err != nil {
			return out, domain.RepositoryWriteFailure{Op: string(w.Op), Kind: w.Kind, Cause: err}
		}
		parent := w.ParentRef
		if id, ok := resolved[parent]; ok {
			parent = id
		}
		switch w.Op {
		case OpUploadPhoto:
			id, err := r.upload(ctx, tree, parent, w)
			if err != nil {
				var skip domain.BlobUploadFailure
				if errors.As(err, &skip) {
					out.SkippedPhotos = append(out.SkippedPhotos, err)
					continue
				}
				return out, err
			}
			out.Writes += 2
			resolved[w.Ref] = id
		default:
			id, err := r.apply(ctx, w, parent)
			if err != nil {
				return out, err
			}
			out.Writes++
			if w.Ref == "" {
				continue
			}
			resolved[w.Ref] = id
			tree.Promote(w.Ref, id)
			if w.Ref == plan.RootRef {
				out.InterventionID = id
			}
		}
	}
	return out, nil
}

// apply performs a single repository write and returns the identifier the
// entity carries afterwards.
func (r *Reconciler) apply(ctx context.Context, w Write, parent string) (string, error) {
	start := r.now()
	var (
		id  string
		err error
	)
	switch w.Op {
	case OpInsert:
		id, err = r.repo.Insert(ctx, w.Kind, parent, w.Fields)
	case OpUpdate:
		id = w.Ref
		err = r.repo.Update(ctx, w.Kind, w.Ref, w.Fields)
	case OpReplaceChildren:
		err = r.repo.DeleteWhere(ctx, w.Kind, parent)
	default:
		err = fmt.Errorf("unsupported write op %q", w.Op)
	}
	r.metrics.Observe(ctx, "write."+string(w.Op)+"."+string(w.Kind), err == nil, r.now().Sub(start))
	if err != nil {
		return "", domain.RepositoryWriteFailure{Op: string(w.Op), Kind: w.Kind, Cause: err}
	}
	r.logger.Debug("report write",
		"op", string(w.Op),
		"kind", string(w.Kind),
		"id", id,
		"parent_id", parent)
	return id, nil
}

// upload stores the photo bytes and inserts the reference row. Blob errors
// come back as BlobUploadFailure; row errors as RepositoryWriteFailure.
func (r *Reconciler) upload(ctx context.Context, tree *Tree, parent string, w Write) (string, error) {
	ph := *w.Photo
	key := photoKey(parent, ph)
	if r.blobs == nil {
		return "", r.skipPhoto(key, errors.New("no blob store configured"))
	}
	start := r.now()
	info, err := r.blobs.Put(ctx, key, bytes.NewReader(ph.Data), blob.PutOptions{
		ContentType: ph.ContentType,
		Metadata:    map[string]string{"category": ph.Category, "intervention": parent},
	})
	r.metrics.Observe(ctx, "write.upload_photo.photo", err == nil, r.now().Sub(start))
	if err != nil {
		return "", r.skipPhoto(key, err)
	}
	ph.Path = info.Key
	if ph.Path == "" {
		ph.Path = key
	}
	// The bytes are stored from here on; a retry only needs the row.
	tree.setPhotoPath(w.Ref, ph.Path)
	id, err := r.apply(ctx, Write{Op: OpInsert, Kind: domain.KindPhoto, Ref: w.Ref, Fields: photoFields(ph)}, parent)
	if err != nil {
		return "", err
	}
	tree.Promote(w.Ref, id)
	return id, nil
}

func (r *Reconciler) skipPhoto(key string, cause error) error {
	err := domain.BlobUploadFailure{Path: key, Cause: cause}
	r.logger.Warn("photo upload skipped", "path", key, "error", cause)
	return err
}

// photoKey lays photos out per intervention and category.
func photoKey(intervention string, ph domain.Photo) string {
	name := ph.FileName
	if name == "" {
		name = "photo"
	}
	return path.Join("interventions", intervention, ph.Category, ph.ID+"-"+path.Base(name))
}
