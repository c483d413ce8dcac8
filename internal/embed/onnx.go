package embed

import (
	"context"
	"fmt"
	"sync"

	"github.com/daulet/tokenizers"
	ort "github.com/yalue/onnxruntime_go"
	"github.com/viterin/vek/vek32"
)

// queryInstruction is prepended to the raw text before tokenizing in
// ModeQuery, matching the retrieval-tuned instruction prefix convention
// used by BGE-style models in the original implementation's
// services/embedding.py (QUERY_INSTRUCTION). Passage mode sends the
// text unmodified.
const queryInstruction = "Represent this question for retrieving the same or highly similar exam questions: "

// ONNXConfig names the two on-disk artifacts an ONNXClient needs: the
// exported model graph and the matching tokenizer vocabulary/config.
type ONNXConfig struct {
	ModelPath     string
	TokenizerPath string
	Dimension     int
	MaxSeqLen     int
}

// ONNXClient runs a sentence-embedding model locally via onnxruntime,
// with tokenization handled by the Hugging Face-compatible tokenizer
// bindings. Both libraries are process-wide and safe for concurrent use
// once initialized; ONNXClient serializes session.Run calls with a
// mutex because the underlying C session is not guaranteed reentrant
// for a single *ort.DynamicAdvancedSession across goroutines.
type ONNXClient struct {
	cfg       ONNXConfig
	tokenizer *tokenizers.Tokenizer
	session   *ort.DynamicAdvancedSession
	mu        sync.Mutex
}

// NewONNXClient loads the tokenizer and ONNX session. Call Close when
// the process shuts down to release the underlying C resources.
func NewONNXClient(cfg ONNXConfig) (*ONNXClient, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("embed: ONNXConfig.Dimension must be positive")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 256
	}

	tok, err := tokenizers.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("embed: loading tokenizer: %w", err)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		tok.Close()
		return nil, fmt.Errorf("embed: initializing onnxruntime: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"sentence_embedding"},
		nil,
	)
	if err != nil {
		tok.Close()
		return nil, fmt.Errorf("embed: creating onnx session: %w", err)
	}

	return &ONNXClient{cfg: cfg, tokenizer: tok, session: session}, nil
}

func (c *ONNXClient) Dimension() int { return c.cfg.Dimension }

// Close releases the tokenizer and ONNX session.
func (c *ONNXClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenizer.Close()
	return c.session.Destroy()
}

func (c *ONNXClient) Embed(ctx context.Context, text string, mode Mode) ([]float32, error) {
	if mode == ModeQuery {
		text = queryInstruction + text
	}

	ids, _ := c.tokenizer.Encode(text)
	if len(ids) > c.cfg.MaxSeqLen {
		ids = ids[:c.cfg.MaxSeqLen]
	}

	inputIDs := make([]int64, len(ids))
	attnMask := make([]int64, len(ids))
	for i, id := range ids {
		inputIDs[i] = int64(id)
		attnMask[i] = 1
	}

	shape := ort.NewShape(1, int64(len(ids)))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("embed: building input tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attnMask)
	if err != nil {
		return nil, fmt.Errorf("embed: building attention mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	outShape := ort.NewShape(1, int64(c.cfg.Dimension))
	outTensor, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, fmt.Errorf("embed: allocating output tensor: %w", err)
	}
	defer outTensor.Destroy()

	c.mu.Lock()
	runErr := c.session.Run([]ort.Value{idsTensor, maskTensor}, []ort.Value{outTensor})
	c.mu.Unlock()
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("embed: running onnx session: %w", runErr)
	}

	vec := append([]float32(nil), outTensor.GetData()...)
	normalizeUnit(vec)
	return vec, nil
}

// normalizeUnit scales v in place to unit L2 norm using vek's
// SIMD-accelerated float32 reductions, matching the
// normalize_embeddings=True behavior the original Python embedding
// service relied on from the FlagEmbedding library.
func normalizeUnit(v []float32) {
	norm := vek32.Norm(v)
	if norm == 0 {
		return
	}
	inv := 1 / norm
	vek32.MulNumber_Inplace(v, inv)
}
