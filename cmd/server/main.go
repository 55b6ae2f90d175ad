package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hall-compliance/internal/ai"
	"hall-compliance/internal/api"
	"hall-compliance/internal/assess"
	"hall-compliance/internal/index"
	"hall-compliance/internal/pipeline"
	"hall-compliance/internal/store"
	"hall-compliance/internal/vision"
)

func main() {
	baseDir, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("determine working directory: %v", err)
	}

	dataDir := filepath.Join(baseDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logrus.Fatalf("create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "hall-compliance.db")
	if override := strings.TrimSpace(os.Getenv("HALL_DB_PATH")); override != "" {
		dbPath = override
	}
	db, err := store.Open(dbPath, true)
	if err != nil {
		logrus.Fatalf("open database: %v", err)
	}
	defer db.Close()

	generator := buildGenerator()
	embedder := buildEmbedder()
	ruleIndex := buildRuleIndex(db, embedder)
	detector := buildDetector()

	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("ASSESS_TIMEOUT")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}
	assessor := assess.NewAssessor(generator, timeout)

	threshold := 0.3
	if raw := strings.TrimSpace(os.Getenv("CONFIDENCE_THRESHOLD")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			threshold = v
		}
	}

	service := pipeline.New(detector, ruleIndex, assessor, db, threshold)

	var origins []string
	if raw := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	server, err := api.NewServer(api.Config{Pipeline: service, AllowedOrigins: origins})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}
	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("starting hall-compliance backend on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}

func buildGenerator() ai.Generator {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("DISABLE_AI")), "true") {
		logrus.Warn("generative assessment disabled by DISABLE_AI")
		return nil
	}

	cfg := ai.Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("OPENAI_MODEL"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
	if raw := os.Getenv("OPENAI_TEMPERATURE"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Temperature = v
		}
	}
	if raw := os.Getenv("OPENAI_MAX_TOKENS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.MaxTokens = v
		}
	}

	var primary ai.Generator
	if client, err := ai.NewClient(cfg); err == nil {
		primary = client
	} else if !errors.Is(err, ai.ErrDisabled) {
		logrus.WithError(err).Warn("openai client unavailable")
	}

	var fallback ai.Generator
	hfCfg := ai.HFConfig{
		APIToken: os.Getenv("HUGGINGFACE_API_TOKEN"),
		Model:    os.Getenv("HUGGINGFACE_MODEL"),
	}
	if client, err := ai.NewHFClient(hfCfg); err == nil {
		fallback = client
	} else if !errors.Is(err, ai.ErrDisabled) {
		logrus.WithError(err).Warn("huggingface client unavailable")
	}

	generator := ai.WithFallback(primary, fallback)
	if generator == nil || !generator.Enabled() {
		logrus.Warn("no generative backend configured; assessments will degrade to manual review")
	}
	return generator
}

func buildEmbedder() ai.Embedder {
	cfg := ai.EmbedConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("EMBEDDING_MODEL"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
	client, err := ai.NewEmbedClient(cfg)
	if err != nil {
		return nil
	}
	return client
}

func buildRuleIndex(db *store.Database, embedder ai.Embedder) index.Index {
	strategy := strings.ToLower(strings.TrimSpace(os.Getenv("INDEX_STRATEGY")))
	if strategy == "embedding" {
		if embedder != nil && embedder.Enabled() {
			idx, err := index.NewEmbeddingIndex(db, embedder)
			if err == nil {
				logrus.Info("using embedding rule index")
				return idx
			}
			logrus.WithError(err).Warn("embedding index unavailable, falling back to keyword index")
		} else {
			logrus.Warn("embedding index requested but no embedder configured, falling back to keyword index")
		}
	}

	idx, err := index.NewKeywordIndex(db)
	if err != nil {
		logrus.Fatalf("create keyword index: %v", err)
	}
	return idx
}

func buildDetector() *vision.Detector {
	bundleDir := strings.TrimSpace(os.Getenv("VISION_BUNDLE_DIR"))
	if bundleDir == "" {
		logrus.Warn("VISION_BUNDLE_DIR not set; image scoring will return no detections")
		return vision.NewDetector(&vision.StaticBackend{})
	}
	backend, err := vision.LoadONNXBackend(bundleDir)
	if err != nil {
		logrus.Fatalf("load vision bundle: %v", err)
	}
	return vision.NewDetector(backend)
}
