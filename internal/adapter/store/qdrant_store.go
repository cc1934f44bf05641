package store

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"orchestratai-core/internal/domain/entity"
	"orchestratai-core/internal/domain/repository"
)

// QdrantStore is the knowledge-base vector search collaborator. It embeds
// the query text and runs a top-k cosine query against one collection.
type QdrantStore struct {
	client         *qdrant.Client
	collectionName string
	embedder       repository.Embedder
}

func NewQdrantStore(client *qdrant.Client, collectionName string, embedder repository.Embedder) *QdrantStore {
	return &QdrantStore{
		client:         client,
		collectionName: collectionName,
		embedder:       embedder,
	}
}

// InitCollection creates the collection on first run.
func (s *QdrantStore) InitCollection(ctx context.Context, dim uint64) error {
	_, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.NotFound {
		return err
	}

	if err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dim,
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// SearchWithScores returns the k nearest documents, best first. Qdrant
// reports cosine similarity (higher is better); callers expect a distance
// where lower is better, so the score is flipped to cosine distance
// (1 - similarity, range 0..2).
func (s *QdrantStore) SearchWithScores(ctx context.Context, query string, k int) ([]entity.ScoredDocument, error) {
	vector, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	docs := make([]entity.ScoredDocument, 0, len(res))
	for _, hit := range res {
		metadata := make(map[string]any, len(hit.Payload))
		content := ""
		for key, value := range hit.Payload {
			if key == "content" {
				content = value.GetStringValue()
				continue
			}
			metadata[key] = payloadValue(value)
		}
		docs = append(docs, entity.ScoredDocument{
			Content:  content,
			Metadata: metadata,
			Distance: 1 - float64(hit.Score),
		})
	}
	return docs, nil
}

// payloadValue flattens the qdrant value kinds the ingestion pipeline
// actually writes (strings, integers, doubles, bools).
func payloadValue(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return v.String()
	}
}
