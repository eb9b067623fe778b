package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"example.com/warehouse/services/arrivals/config"
	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ElasticClient provides integration with Elasticsearch
type ElasticClient struct {
	client *elasticsearch.Client
	config config.ElasticConfig
}

// NewElasticClient creates a new Elasticsearch client
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	esConfig := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		config: cfg,
	}, nil
}

// IndexPerformanceRecord indexes one supplier's monthly score for the
// reporting dashboards
func (c *ElasticClient) IndexPerformanceRecord(ctx context.Context, record *models.SupplierPerformance) error {
	doc := map[string]interface{}{
		"id":                  record.ID.String(),
		"supplier_code":       record.SupplierCode,
		"supplier_name":       record.SupplierName,
		"month":               record.Month,
		"year":                record.Year,
		"total_deliveries":    record.TotalDeliveries,
		"on_time_deliveries":  record.OnTimeDeliveries,
		"delay_days":          record.DelayDays,
		"fulfillment_percent": record.FulfillmentPercent,
		"final_score":         record.FinalScore,
		"grade":               record.Grade,
		"rank":                record.Rank,
		"category":            record.Category,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal performance document")
	}

	req := esapi.IndexRequest{
		Index:      config.FormatIndex(c.config, c.config.Index),
		DocumentID: fmt.Sprintf("%s-%d-%d", record.SupplierCode, record.Year, record.Month),
		Body:       bytes.NewReader(data),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to index performance record")
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.Errorf("failed to index performance record: %s", res.String())
	}

	log.Debug().
		Str("supplier_code", record.SupplierCode).
		Int("month", record.Month).
		Int("year", record.Year).
		Msg("Performance record indexed")

	return nil
}
