package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"gopkg.in/yaml.v3"
)

// bundleConfig describes the contents of a vision model bundle.
type bundleConfig struct {
	Model      string  `yaml:"model"`
	InputName  string  `yaml:"input_name"`
	OutputName string  `yaml:"output_name"`
	ImageSize  int     `yaml:"image_size"`
	EmbedDim   int     `yaml:"embed_dim"`
	LogitScale float64 `yaml:"logit_scale"`
}

// ONNXBackend scores images with a local CLIP image encoder exported to ONNX.
// Label text embeddings are precomputed offline and shipped in the bundle, so
// scoring is one image-encoder pass plus a cosine similarity per label.
type ONNXBackend struct {
	session   *ort.AdvancedSession
	input     *ort.Tensor[float32]
	output    *ort.Tensor[float32]
	labelEmbs map[string][]float32
	imageSize int
	scale     float64

	mu sync.Mutex
}

// LoadONNXBackend initializes the ONNX session from a bundle directory
// containing config.yaml, the model file, and label_embeddings.json.
func LoadONNXBackend(bundleDir string) (*ONNXBackend, error) {
	if bundleDir == "" {
		return nil, errors.New("bundle dir is empty")
	}

	cfg, err := loadBundleConfig(filepath.Join(bundleDir, "config.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load bundle config: %w", err)
	}

	labelEmbs, err := loadLabelEmbeddings(filepath.Join(bundleDir, "label_embeddings.json"), cfg.EmbedDim)
	if err != nil {
		return nil, fmt.Errorf("load label embeddings: %w", err)
	}

	libPath := resolveSharedLibraryPath(bundleDir)
	if libPath == "" {
		return nil, errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(bundleDir, cfg.Model)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	inputShape := ort.NewShape(1, 3, int64(cfg.ImageSize), int64(cfg.ImageSize))
	input, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	outputShape := ort.NewShape(1, int64(cfg.EmbedDim))
	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &ONNXBackend{
		session:   session,
		input:     input,
		output:    output,
		labelEmbs: labelEmbs,
		imageSize: cfg.ImageSize,
		scale:     cfg.LogitScale,
	}, nil
}

// Scores runs the image encoder once and returns the scaled cosine
// similarity against every label's precomputed text embedding.
func (b *ONNXBackend) Scores(ctx context.Context, img image.Image, labels []string) ([]float64, error) {
	if b == nil || b.session == nil {
		return nil, errors.New("onnx backend not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pixels := preprocess(img, b.imageSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	copy(b.input.GetData(), pixels)
	if err := b.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	embed := normalizeVector(b.output.GetData())

	scores := make([]float64, len(labels))
	for i, label := range labels {
		labelEmb, ok := b.labelEmbs[label]
		if !ok {
			return nil, fmt.Errorf("label %q has no precomputed embedding", label)
		}
		scores[i] = b.scale * dot(embed, labelEmb)
	}
	return scores, nil
}

func normalizeVector(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func loadBundleConfig(path string) (bundleConfig, error) {
	cfg := bundleConfig{
		Model:      "clip_image.onnx",
		InputName:  "pixel_values",
		OutputName: "image_embeds",
		ImageSize:  224,
		EmbedDim:   512,
		LogitScale: 100.0,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.ImageSize <= 0 || cfg.EmbedDim <= 0 {
		return cfg, errors.New("invalid image_size or embed_dim")
	}
	return cfg, nil
}

func loadLabelEmbeddings(path string, dim int) (map[string][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]float32
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string][]float32, len(raw))
	for label, vec := range raw {
		if len(vec) != dim {
			return nil, fmt.Errorf("label %q embedding dim %d, want %d", label, len(vec), dim)
		}
		out[label] = normalizeVector(vec)
	}
	return out, nil
}

// resolveSharedLibraryPath locates a platform-specific onnxruntime shared
// library. ONNXRUNTIME_SHARED_LIBRARY_PATH wins when set.
func resolveSharedLibraryPath(bundleDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		bundleDir,
		filepath.Join(bundleDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
