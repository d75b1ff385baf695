// internal/sinks/search/indexer.go

// Package search mirrors normalized lead records into Elasticsearch so the
// ops dashboard can query them.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"lead-capture-workers/internal/common/database"
	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/models"
)

type Indexer struct {
	client *database.ElasticsearchClient
	index  string
}

func NewIndexer(client *database.ElasticsearchClient, index string) *Indexer {
	return &Indexer{client: client, index: index}
}

// IndexRecord writes one record, keyed by correlation id so re-delivery
// overwrites instead of duplicating.
func (i *Indexer) IndexRecord(ctx context.Context, correlationID string, record models.NormalizedLeadRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return commonerrors.NewIndexWriteFailedError(err)
	}

	res, err := i.client.Client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Client.Index.WithDocumentID(correlationID),
		i.client.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return commonerrors.NewIndexWriteFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return commonerrors.NewIndexWriteFailedError(
			fmt.Errorf("index response: %s", res.Status()))
	}
	return nil
}
