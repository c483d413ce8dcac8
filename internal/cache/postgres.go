package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/howard-nolan/questionrouter/internal/embed"
	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/question"
)

// PostgresStore is the store of record for the semantic cache, backed
// by a jackc/pgx/v5 connection pool and a pgvector `vector` column for
// approximate nearest-neighbor lookup (§4.3).
type PostgresStore struct {
	pool                *pgxpool.Pool
	similarityThreshold float64
	annCandidates       int
}

// NewPostgresStore wraps an already-configured pool. Sizing (MaxConns,
// MinConns) is the caller's responsibility.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool:                pool,
		similarityThreshold: DefaultSimilarityThreshold,
		annCandidates:       DefaultANNCandidates,
	}
}

// WithSimilarityThreshold overrides the default ANN acceptance
// threshold (config-driven override point named in §4.3).
func (s *PostgresStore) WithSimilarityThreshold(t float64) *PostgresStore {
	s.similarityThreshold = t
	return s
}

// WithANNCandidates overrides the default ANN candidate fan-out K.
func (s *PostgresStore) WithANNCandidates(k int) *PostgresStore {
	s.annCandidates = k
	return s
}

func marshalOptions(opts []string) ([]byte, error) {
	if opts == nil {
		opts = []string{}
	}
	return json.Marshal(opts)
}

func unmarshalOptions(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var opts []string
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// FindExact looks up a question by its normalized identity. Options are
// compared as the stored jsonb column: nil and empty option lists both
// encode to [] and so match each other, while a question with options
// never matches one without. The unique index in schema.sql is on the
// same (normalized_content, type, normalized_options) key.
func (s *PostgresStore) FindExact(ctx context.Context, normalizedContent string, qtype model.QuestionType, normalizedOptions []string) (*Question, bool, error) {
	optsJSON, err := marshalOptions(normalizedOptions)
	if err != nil {
		return nil, false, fmt.Errorf("cache: marshal normalized options: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		SELECT id, content, normalized_content, type, options, normalized_options, embedding, created_at
		FROM questions
		WHERE normalized_content = $1 AND type = $2 AND normalized_options = $3::jsonb
		LIMIT 1`,
		normalizedContent, int16(qtype), optsJSON,
	)

	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: find exact: %w", err)
	}
	return q, true, nil
}

// FindApproximate embeds content in ModeQuery and runs a cosine-distance
// ANN search, accepting the first candidate whose similarity clears the
// configured threshold, whose type matches, and whose normalized options
// are equal to normalizedOptions (both absent, or both present and
// identical) (§4.3). A nil embedder, or one that returns
// embed.ErrUnavailable, yields a miss rather than an error.
func (s *PostgresStore) FindApproximate(ctx context.Context, embedder embed.Client, content string, qtype model.QuestionType, normalizedOptions []string) (*Question, bool, error) {
	if embedder == nil {
		return nil, false, nil
	}
	vec, err := embedder.Embed(ctx, content, embed.ModeQuery)
	if errors.Is(err, embed.ErrUnavailable) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: embed query: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, content, normalized_content, type, options, normalized_options, embedding, created_at,
		       1 - (embedding <=> $1) AS similarity
		FROM questions
		WHERE type = $2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $3`,
		pgvector.NewVector(vec), int16(qtype), s.annCandidates,
	)
	if err != nil {
		return nil, false, fmt.Errorf("cache: approximate query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		q, similarity, err := scanQuestionWithSimilarity(rows)
		if err != nil {
			return nil, false, fmt.Errorf("cache: scan approximate candidate: %w", err)
		}
		if similarity < s.similarityThreshold {
			continue
		}
		if !question.OptionsEqual(q.NormalizedOptions, normalizedOptions) {
			continue
		}
		return q, true, nil
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("cache: approximate rows: %w", err)
	}
	return nil, false, nil
}

// Lookup tries an exact match first and falls back to approximate
// matching on miss. Approximate matching is skipped entirely when
// embedder is nil, and reports a miss when the embedder returns
// embed.ErrUnavailable (embed.NoneClient), i.e. the degraded
// "exact-match-only" mode of §9.
func (s *PostgresStore) Lookup(ctx context.Context, embedder embed.Client, q model.Query) (*Question, bool, error) {
	normContent := normalizeContentForLookup(q.Content)
	normOptions := normalizeOptionsForLookup(q.Options)

	if found, ok, err := s.FindExact(ctx, normContent, q.Type, normOptions); err != nil {
		return nil, false, err
	} else if ok {
		return found, true, nil
	}

	if embedder == nil {
		return nil, false, nil
	}
	return s.FindApproximate(ctx, embedder, q.Content, q.Type, normOptions)
}

// BatchGetAnswers fetches every requested provider's answer for a
// question in one round trip. The returned map always has one entry per
// requested provider name; a nil value means that provider has not
// answered this question before.
func (s *PostgresStore) BatchGetAnswers(ctx context.Context, question *Question, providerNames []string) (map[string]*model.Answer, error) {
	out := make(map[string]*model.Answer, len(providerNames))
	for _, name := range providerNames {
		out[name] = nil
	}
	if question == nil || len(providerNames) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT qpa.provider, a.type, a.choice, a.judgement, a.text
		FROM question_provider_answers qpa
		JOIN answers a ON a.id = qpa.answer_id
		WHERE qpa.question_id = $1 AND qpa.provider = ANY($2)`,
		question.ID, providerNames,
	)
	if err != nil {
		return nil, fmt.Errorf("cache: batch get answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			provider          string
			qtype             int16
			choiceJSON        []byte
			judgement         *bool
			textJSON          []byte
		)
		if err := rows.Scan(&provider, &qtype, &choiceJSON, &judgement, &textJSON); err != nil {
			return nil, fmt.Errorf("cache: scan batch answer: %w", err)
		}
		choice, err := unmarshalOptions(choiceJSON)
		if err != nil {
			return nil, fmt.Errorf("cache: unmarshal choice: %w", err)
		}
		text, err := unmarshalOptions(textJSON)
		if err != nil {
			return nil, fmt.Errorf("cache: unmarshal text: %w", err)
		}
		out[provider] = &model.Answer{
			Provider:  provider,
			Type:      model.QuestionType(qtype),
			Choice:    choice,
			Judgement: judgement,
			Text:      text,
			Success:   true,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache: batch get answers rows: %w", err)
	}
	return out, nil
}

// WriteThrough persists one fan-out round's results: the Question row
// (inserted once, embedded lazily in ModePassage on first insert), one
// Answer row per distinct payload shape (deduplicated by fingerprint),
// and one QuestionProviderAnswer row per provider result. Runs in a
// single transaction and is idempotent on repeated calls with the same
// inputs via ON CONFLICT DO UPDATE.
func (s *PostgresStore) WriteThrough(ctx context.Context, embedder embed.Client, q model.Query, results []ProviderResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cache: write through begin: %w", err)
	}
	defer tx.Rollback(ctx)

	normContent := normalizeContentForLookup(q.Content)
	normOptions := normalizeOptionsForLookup(q.Options)

	questionID, err := s.upsertQuestion(ctx, tx, embedder, q, normContent, normOptions)
	if err != nil {
		return err
	}

	for _, r := range results {
		if !r.Answer.Success {
			continue
		}
		answerID, err := s.upsertAnswer(ctx, tx, r.Answer)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO question_provider_answers (question_id, provider, answer_id, observed_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (question_id, provider) DO UPDATE
				SET answer_id = EXCLUDED.answer_id, observed_at = EXCLUDED.observed_at`,
			questionID, r.Provider, answerID,
		); err != nil {
			return fmt.Errorf("cache: upsert question_provider_answer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("cache: write through commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) upsertQuestion(ctx context.Context, tx pgx.Tx, embedder embed.Client, q model.Query, normContent string, normOptions []string) (int64, error) {
	optsJSON, err := marshalOptions(q.Options)
	if err != nil {
		return 0, fmt.Errorf("cache: marshal options: %w", err)
	}
	normOptsJSON, err := marshalOptions(normOptions)
	if err != nil {
		return 0, fmt.Errorf("cache: marshal normalized options: %w", err)
	}

	var existingID int64
	err = tx.QueryRow(ctx, `
		SELECT id FROM questions WHERE normalized_content = $1 AND type = $2 AND normalized_options = $3::jsonb`,
		normContent, int16(q.Type), normOptsJSON,
	).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("cache: lookup question for upsert: %w", err)
	}

	var vec *pgvector.Vector
	if embedder != nil {
		if raw, embedErr := embedder.Embed(ctx, q.Content, embed.ModePassage); embedErr == nil {
			v := pgvector.NewVector(raw)
			vec = &v
		}
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO questions (content, normalized_content, type, options, normalized_options, embedding)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6)
		ON CONFLICT (normalized_content, type, normalized_options) DO UPDATE
			SET content = EXCLUDED.content
		RETURNING id`,
		q.Content, normContent, int16(q.Type), optsJSON, normOptsJSON, vec,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("cache: insert question: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) upsertAnswer(ctx context.Context, tx pgx.Tx, a model.Answer) (int64, error) {
	fp := answerFingerprint(a)
	choiceJSON, err := marshalOptions(a.Choice)
	if err != nil {
		return 0, fmt.Errorf("cache: marshal choice: %w", err)
	}
	textJSON, err := marshalOptions(a.Text)
	if err != nil {
		return 0, fmt.Errorf("cache: marshal text: %w", err)
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO answers (fingerprint, type, choice, judgement, text)
		VALUES ($1, $2, $3::jsonb, $4, $5::jsonb)
		ON CONFLICT (fingerprint) DO UPDATE SET fingerprint = EXCLUDED.fingerprint
		RETURNING id`,
		fp, int16(a.Type), choiceJSON, a.Judgement, textJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("cache: upsert answer: %w", err)
	}
	return id, nil
}

// FindAnyAnswer backs the LocalCache adapter (§4.2): it exact-matches
// the question, then returns any one provider's stored answer,
// regardless of which provider gave it.
func (s *PostgresStore) FindAnyAnswer(ctx context.Context, q model.Query) (*model.Answer, bool, error) {
	normContent := normalizeContentForLookup(q.Content)
	normOptions := normalizeOptionsForLookup(q.Options)

	question, ok, err := s.FindExact(ctx, normContent, q.Type, normOptions)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	row := s.pool.QueryRow(ctx, `
		SELECT a.type, a.choice, a.judgement, a.text
		FROM question_provider_answers qpa
		JOIN answers a ON a.id = qpa.answer_id
		WHERE qpa.question_id = $1
		LIMIT 1`,
		question.ID,
	)

	var (
		qtype      int16
		choiceJSON []byte
		judgement  *bool
		textJSON   []byte
	)
	if err := row.Scan(&qtype, &choiceJSON, &judgement, &textJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: find any answer: %w", err)
	}
	choice, err := unmarshalOptions(choiceJSON)
	if err != nil {
		return nil, false, fmt.Errorf("cache: unmarshal choice: %w", err)
	}
	text, err := unmarshalOptions(textJSON)
	if err != nil {
		return nil, false, fmt.Errorf("cache: unmarshal text: %w", err)
	}
	return &model.Answer{
		Type:      model.QuestionType(qtype),
		Choice:    choice,
		Judgement: judgement,
		Text:      text,
		Success:   true,
	}, true, nil
}

// scanner abstracts over pgx.Row and pgx.Rows for the shared Question
// column list.
type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (*Question, error) {
	q, _, err := scanQuestionRow(row, false)
	return q, err
}

func scanQuestionWithSimilarity(row scanner) (*Question, float64, error) {
	return scanQuestionRow(row, true)
}

func scanQuestionRow(row scanner, withSimilarity bool) (*Question, float64, error) {
	var (
		q             Question
		optsJSON      []byte
		normOptsJSON  []byte
		vec           *pgvector.Vector
		similarity    float64
		qtype         int16
		scanErr       error
	)
	if withSimilarity {
		scanErr = row.Scan(&q.ID, &q.Content, &q.NormalizedContent, &qtype, &optsJSON, &normOptsJSON, &vec, &q.CreatedAt, &similarity)
	} else {
		scanErr = row.Scan(&q.ID, &q.Content, &q.NormalizedContent, &qtype, &optsJSON, &normOptsJSON, &vec, &q.CreatedAt)
	}
	if scanErr != nil {
		return nil, 0, scanErr
	}
	q.Type = model.QuestionType(qtype)

	opts, err := unmarshalOptions(optsJSON)
	if err != nil {
		return nil, 0, fmt.Errorf("unmarshal options: %w", err)
	}
	q.Options = opts

	normOpts, err := unmarshalOptions(normOptsJSON)
	if err != nil {
		return nil, 0, fmt.Errorf("unmarshal normalized options: %w", err)
	}
	q.NormalizedOptions = normOpts

	if vec != nil {
		q.Embedding = vec.Slice()
	}
	return &q, similarity, nil
}
