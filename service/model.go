package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amapara27/silicon-edge-ai-compiler/cache"
	"github.com/amapara27/silicon-edge-ai-compiler/db"
	"github.com/amapara27/silicon-edge-ai-compiler/external/s3"
	"github.com/amapara27/silicon-edge-ai-compiler/graph"
	"github.com/amapara27/silicon-edge-ai-compiler/logging"
	"github.com/amapara27/silicon-edge-ai-compiler/metrics"
	"github.com/amapara27/silicon-edge-ai-compiler/types"
)

// ObjectStore is the durable blob store the coordinator writes model files
// into. Satisfied by external/s3.Store.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	SignedGetURL(key string) (string, error)
}

type SaveRequest struct {
	Name       string
	TargetChip string
	Metrics    map[string]interface{}
	ModelFile  *types.MemoryFile
	AuxFile    *types.MemoryFile // optional external-weights file
	Graph      *graph.Graph      // optional editor layout
}

type LoadResult struct {
	Model    *db.SavedModel
	ModelURL string // signed, time-limited
	AuxURL   string // empty when no aux blob is recorded or signing failed
	Graph    *graph.Graph
	Metrics  map[string]interface{}
}

type Model interface {
	Save(ctx context.Context, owner string, req *SaveRequest) (string, error)
	Load(ctx context.Context, owner, modelID string) (*LoadResult, error)
	Delete(ctx context.Context, owner, modelID string) error
	List(ctx context.Context, owner string) ([]*db.SavedModel, error)
	SetDeployed(ctx context.Context, owner, modelID string, deployed bool) error
}

type ModelService struct {
	modelDB      db.ModelDao
	store        ObjectStore
	cacheService cache.Cache
}

func NewModelService(modelDB db.ModelDao, store ObjectStore, cacheService cache.Cache) Model {
	return &ModelService{
		modelDB:      modelDB,
		store:        store,
		cacheService: cacheService,
	}
}

// Save runs the multi-step save sequence. Each step is a commit point: a
// failure aborts the whole operation and anything already uploaded stays in
// the bucket as an orphan (no compensating deletes, no partial row is ever
// visible because the row insert comes last).
func (m *ModelService) Save(ctx context.Context, owner string, req *SaveRequest) (string, error) {
	if owner == "" {
		return "", ErrUnauthenticated
	}
	if req == nil || req.Name == "" {
		return "", ErrEmptyName
	}
	if req.ModelFile == nil || req.ModelFile.Size() == 0 {
		return "", ErrMissingModelFile
	}

	modelID := uuid.NewString()

	modelKey := types.GetModelObjectKey(owner, modelID)
	if err := m.store.Put(ctx, modelKey, req.ModelFile.Data, s3.ContentTypeBinary); err != nil {
		metrics.SaveFailureCounter.Inc()
		return "", ErrBlobTransfer.Enrich("model upload failed: " + err.Error())
	}

	auxKey := ""
	if req.AuxFile != nil && req.AuxFile.Size() > 0 {
		auxKey = types.GetAuxObjectKey(owner, modelID)
		if err := m.store.Put(ctx, auxKey, req.AuxFile.Data, s3.ContentTypeBinary); err != nil {
			metrics.SaveFailureCounter.Inc()
			return "", ErrBlobTransfer.Enrich("aux data upload failed: " + err.Error())
		}
	}

	graphKey := ""
	if req.Graph != nil {
		doc, err := graph.Encode(*req.Graph)
		if err != nil {
			metrics.SaveFailureCounter.Inc()
			return "", ErrBlobTransfer.Enrich("graph encode failed: " + err.Error())
		}
		graphKey = types.GetGraphObjectKey(owner, modelID)
		if err := m.store.Put(ctx, graphKey, doc, s3.ContentTypeJSON); err != nil {
			metrics.SaveFailureCounter.Inc()
			return "", ErrBlobTransfer.Enrich("graph upload failed: " + err.Error())
		}
	}

	version, err := m.modelDB.NextVersion(owner, req.Name)
	if err != nil {
		metrics.SaveFailureCounter.Inc()
		return "", ErrRecordStore.Enrich("version lookup failed: " + err.Error())
	}

	targetChip := req.TargetChip
	if targetChip == "" {
		targetChip = types.DefaultTargetChip
	}
	row := &db.SavedModel{
		Id:              modelID,
		Owner:           owner,
		Name:            req.Name,
		Version:         version,
		TargetChip:      targetChip,
		Metrics:         encodeMetrics(req.Metrics),
		ModelBlobPath:   modelKey,
		AuxDataBlobPath: auxKey,
		GraphBlobPath:   graphKey,
	}
	if err = m.modelDB.CreateModel(row); err != nil {
		metrics.SaveFailureCounter.Inc()
		logging.Logger.Errorf("row insert failed for model %s, blobs stay orphaned, err=%s", modelID, err.Error())
		return "", ErrRecordStore.Enrich("row insert failed: " + err.Error())
	}

	m.cacheService.Delete(listCacheKey(owner))
	metrics.SaveCounter.Inc()
	return modelID, nil
}

// Load locates the saved model and issues signed URLs for its blobs. The
// caller performs the actual transfers against those URLs, which keeps large
// blobs off this service's own request path. Only the mandatory model blob is
// fatal: a missing or broken aux blob or graph document degrades to absent.
func (m *ModelService) Load(ctx context.Context, owner, modelID string) (*LoadResult, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}
	row, err := m.modelDB.GetModel(owner, modelID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrModelNotFound
		}
		return nil, ErrRecordStore.Enrich(err.Error())
	}

	modelURL, err := m.store.SignedGetURL(row.ModelBlobPath)
	if err != nil {
		metrics.LoadFailureCounter.Inc()
		return nil, ErrBlobTransfer.Enrich("sign model url failed: " + err.Error())
	}

	auxURL := ""
	if row.AuxDataBlobPath != "" {
		auxURL, err = m.store.SignedGetURL(row.AuxDataBlobPath)
		if err != nil {
			logging.Logger.Warningf("sign aux url failed for model %s, treating aux as absent, err=%s", modelID, err.Error())
			auxURL = ""
		}
	}

	// a fetched document that decodes to the empty graph carries no layout,
	// it is reported as absent just like a failed fetch
	var g *graph.Graph
	if row.GraphBlobPath != "" {
		doc, err := m.store.Get(ctx, row.GraphBlobPath)
		if err != nil {
			logging.Logger.Warningf("graph fetch failed for model %s, treating layout as absent, err=%s", modelID, err.Error())
		} else if decoded := graph.Decode(doc); !decoded.IsEmpty() {
			g = &decoded
		}
	}

	metrics.LoadCounter.Inc()
	return &LoadResult{
		Model:    row,
		ModelURL: modelURL,
		AuxURL:   auxURL,
		Graph:    g,
		Metrics:  decodeMetrics(row.Metrics),
	}, nil
}

// Delete removes the referenced blobs best-effort, then the row. Only a
// failing row delete is reported, a blob that cannot be removed is logged
// and left behind.
func (m *ModelService) Delete(ctx context.Context, owner, modelID string) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	row, err := m.modelDB.GetModel(owner, modelID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrModelNotFound
		}
		return ErrRecordStore.Enrich(err.Error())
	}

	keys := []string{row.ModelBlobPath}
	if row.AuxDataBlobPath != "" {
		keys = append(keys, row.AuxDataBlobPath)
	}
	if row.GraphBlobPath != "" {
		keys = append(keys, row.GraphBlobPath)
	}
	for _, key := range keys {
		if err := m.store.Delete(ctx, key); err != nil {
			logging.Logger.Warningf("blob removal failed for %s, err=%s", key, err.Error())
		}
	}

	if err = m.modelDB.DeleteModel(owner, modelID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrModelNotFound
		}
		return ErrRecordStore.Enrich("row delete failed: " + err.Error())
	}
	m.cacheService.Delete(listCacheKey(owner))
	metrics.DeleteCounter.Inc()
	return nil
}

func (m *ModelService) List(ctx context.Context, owner string) ([]*db.SavedModel, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}
	if cached, found := m.cacheService.Get(listCacheKey(owner)); found {
		return cached.([]*db.SavedModel), nil
	}
	rows, err := m.modelDB.ListModels(owner)
	if err != nil {
		return nil, ErrRecordStore.Enrich(err.Error())
	}
	m.cacheService.Set(listCacheKey(owner), rows)
	return rows, nil
}

func (m *ModelService) SetDeployed(ctx context.Context, owner, modelID string, deployed bool) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	if err := m.modelDB.SetDeployed(owner, modelID, deployed); err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrModelNotFound
		}
		return ErrRecordStore.Enrich(err.Error())
	}
	m.cacheService.Delete(listCacheKey(owner))
	return nil
}

func listCacheKey(owner string) string {
	return "models/" + owner
}

func encodeMetrics(doc map[string]interface{}) string {
	if len(doc) == 0 {
		return "{}"
	}
	bz, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(bz)
}

func decodeMetrics(raw string) map[string]interface{} {
	doc := map[string]interface{}{}
	if raw == "" {
		return doc
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return map[string]interface{}{}
	}
	return doc
}
