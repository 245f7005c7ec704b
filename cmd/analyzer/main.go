package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"mailtriage/internal/archive"
	"mailtriage/internal/classify"
	"mailtriage/internal/collection"
	"mailtriage/internal/config"
	"mailtriage/internal/enrich"
	"mailtriage/internal/fingerprint"
	"mailtriage/internal/logging"
	"mailtriage/internal/metrics"
	"mailtriage/internal/model"
	appotel "mailtriage/internal/otel"
	"mailtriage/internal/sample"
	"mailtriage/internal/urlfilter"
)

// batchReport is the document emitted to stdout for one analyzer run.
type batchReport struct {
	BatchID     string                `json:"batch_id"`
	Attachments []*model.SampleRecord `json:"attachments"`
	WithURLs    bool                  `json:"with_urls"`
	URLs        map[string][]string   `json:"urls,omitempty"`
}

func main() {
	filterHashes := flag.String("filter-hashes", "", "file with one known hash per line; matching records are marked filtered")
	hashType := flag.String("hash-type", "sha1", "fingerprint algorithm used with -filter-hashes")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("usage: analyzer [flags] attachment-file...")
	}

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stderr)
	ctx := context.Background()

	shutdown, err := appotel.Init(ctx, logger)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdown(ctx)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	if cfg.MetricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, metrics.Handler(reg)); err != nil {
				logger.Error("metrics_listener_failed", err, nil)
			}
		}()
	}

	parser := newParser(cfg)
	batch := processFiles(ctx, parser, logger, m, flag.Args())

	if err := batch.ApplyContentTypeFilters(cfg.Filter.RemoveContentTypes); err != nil {
		log.Fatalf("content-type filtering failed: %v", err)
	}

	if *filterHashes != "" {
		if err := markKnownHashes(batch, m, *filterHashes, *hashType); err != nil {
			log.Fatalf("hash filtering failed: %v", err)
		}
	}

	report := batchReport{BatchID: uuid.NewString(), Attachments: batch.Records()}

	if cfg.Whitelist.File != "" {
		res, err := extractURLs(cfg, logger, m, batch)
		if err != nil {
			log.Fatalf("url extraction failed: %v", err)
		}
		report.WithURLs = res.WithURLs
		report.URLs = res.URLs
	}

	if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
		log.Fatalf("failed to emit report: %v", err)
	}
	logger.Info("batch_complete", map[string]any{
		"batch_id":    report.BatchID,
		"attachments": batch.Len(),
		"with_urls":   report.WithURLs,
	})
}

func newParser(cfg *config.AppConfig) *sample.Parser {
	classifier := classify.NewClassifier(classify.MimeSniffer{})
	computer := fingerprint.NewComputer()
	expander := archive.NewExpander(archive.ArchiverTool{})

	var enricher sample.Enricher
	if cfg.Enrich.TikaEnabled || cfg.Enrich.ReputationEnabled {
		enricher = enrich.NewCoordinator(
			enrich.NewTikaClient(cfg.Enrich.TikaEndpoint),
			enrich.NewVirusTotalClient(cfg.Enrich.ReputationEndpoint, cfg.Enrich.ReputationAPIKey),
			cfg.Enrich,
		)
	}
	return sample.NewParser(classifier, computer, expander, enricher, cfg.Filter.BlacklistContentTypes)
}

// processFiles parses each named file as one attachment. Per-file failures
// are logged and skipped; the batch continues.
func processFiles(ctx context.Context, parser *sample.Parser, logger *logging.Logger, m *metrics.Metrics, paths []string) *collection.Attachments {
	batch := collection.New()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read_failed", err, map[string]any{"path": path})
			m.SamplesProcessed.WithLabelValues(metrics.OutcomeError).Inc()
			continue
		}

		rec, err := parser.Parse(ctx, sample.RawAttachment{
			Filename: filepath.Base(path),
			Payload:  data,
		})
		if err != nil {
			logger.Error("parse_failed", err, map[string]any{"path": path})
			m.SamplesProcessed.WithLabelValues(metrics.OutcomeError).Inc()
			continue
		}
		if rec == nil {
			logger.Info("sample_blacklisted", map[string]any{"path": path})
			m.SamplesProcessed.WithLabelValues(metrics.OutcomeBlacklisted).Inc()
			continue
		}

		m.SamplesProcessed.WithLabelValues(metrics.OutcomeOK).Inc()
		if rec.IsArchive {
			m.ArchivesExpanded.Inc()
			m.MembersRecovered.Add(float64(len(rec.Members)))
		}
		batch.Append(rec)
	}
	return batch
}

func markKnownHashes(batch *collection.Attachments, m *metrics.Metrics, path, hashType string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	known := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if h := strings.TrimSpace(sc.Text()); h != "" {
			known[h] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	seen, err := batch.Filter(known, hashType)
	if err != nil {
		return err
	}
	for h := range seen {
		if _, ok := known[h]; ok {
			m.RecordsFiltered.Inc()
		}
	}
	return nil
}

func extractURLs(cfg *config.AppConfig, logger *logging.Logger, m *metrics.Metrics, batch *collection.Attachments) (urlfilter.Result, error) {
	entries, err := config.LoadWhitelistEntries(cfg.Whitelist.File)
	if err != nil {
		return urlfilter.Result{}, err
	}

	filter := urlfilter.New(entries, cfg.Whitelist.ReloadInterval())
	res, err := filter.ExtractAndFilter(batch.PayloadsText())
	if err != nil {
		return urlfilter.Result{}, err
	}
	m.WhitelistReloads.Inc()
	m.URLsDropped.Add(float64(res.Dropped))
	logger.Info("whitelist_loaded", map[string]any{"domains": filter.DomainCount()})

	return res, nil
}
