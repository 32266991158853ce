package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/avdeyev/webshop/internal/models"
)

// Indexer mirrors catalog writes into the search index. A nil Indexer is
// a no-op so tests and search-less deployments skip indexing entirely.
type Indexer struct {
	Client *elasticsearch.Client
	Index  string
}

func (ix *Indexer) IndexProduct(ctx context.Context, p *models.Product) error {
	if ix == nil || ix.Client == nil {
		return nil
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("es index: marshal: %w", err)
	}

	res, err := ix.Client.Index(
		ix.Index,
		bytes.NewReader(body),
		ix.Client.Index.WithContext(ctx),
		ix.Client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (ix *Indexer) DeleteProduct(ctx context.Context, id uint) error {
	if ix == nil || ix.Client == nil {
		return nil
	}

	res, err := ix.Client.Delete(
		ix.Index,
		strconv.FormatUint(uint64(id), 10),
		ix.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es delete: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}
