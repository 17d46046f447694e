package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"maeva_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"
)

// Searcher retourne les identifiants des produits correspondant au terme, par pertinence.
type Searcher interface {
	Search(ctx context.Context, term string) ([]string, error)
	Index(ctx context.Context, p models.Product) error
	Remove(ctx context.Context, id string) error
}

type ElasticSearcher struct {
	client *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

func NewElasticSearcher(client *elasticsearch.Client, index string, logger *logrus.Logger) *ElasticSearcher {
	return &ElasticSearcher{client: client, index: index, logger: logger}
}

type searchDocument struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
}

func (e *ElasticSearcher) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(searchDocument{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Tags:        p.Tags,
		Featured:    p.Featured,
	})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("erreur envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elastic a refusé l'indexation de %s: %s", p.ID, res.Status())
	}
	e.logger.WithField("product_id", p.ID).Debug("✅ Produit indexé dans Elasticsearch")
	return nil
}

func (e *ElasticSearcher) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: e.index, DocumentID: id, Refresh: "true"}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("erreur envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("elastic a refusé la suppression de %s: %s", id, res.Status())
	}
	return nil
}

func (e *ElasticSearcher) Search(ctx context.Context, term string) ([]string, error) {
	var buf bytes.Buffer
	q := map[string]interface{}{
		"size":    100,
		"_source": false,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     term,
				"fields":    []string{"name^3", "description", "category^2", "tags^2"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.New("index non trouvé ou vide")
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
