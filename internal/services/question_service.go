package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/repos"
	"github.com/vidscholar/vidscholar-backend/internal/types"
)

// Question batch item status beyond the shared success/failed pair.
const StatusNoTranscription = "no_transcription"

const (
	questionCountDefault = 10
	questionCountMax     = 50
	promptCharBudget     = 12000
	llmMaxAttempts       = 3
)

// GenerateResult is one per-video outcome in a generation response.
type GenerateResult struct {
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// GenerateSummary is the response body of a generation run.
type GenerateSummary struct {
	GenerationID    uint              `json:"generation_id"`
	QuestionCount   int               `json:"total_questions"`
	Total           int               `json:"total"`
	Successful      int               `json:"successful"`
	NoTranscription int               `json:"no_transcription"`
	Failed          int               `json:"failed"`
	Questions       []*types.Question `json:"questions"`
	Results         []GenerateResult  `json:"results"`
}

func summarize(results []GenerateResult) (successful, noTranscription, failed int) {
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			successful++
		case StatusNoTranscription:
			noTranscription++
		default:
			failed++
		}
	}
	return
}

// ChatCompleter is the slice of the LLM client the generator needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

type QuestionServiceConfig struct {
	Model      string
	LLMTimeout time.Duration // default 5m
}

type QuestionService interface {
	// Generate builds one prompt across all transcribed videos in the
	// request and asks the model for count questions total. Videos
	// without a transcription are reported, not fatal. An LLM failure
	// after retries leaves no generation behind.
	Generate(ctx context.Context, videoIDs []string, count int) (*GenerateSummary, error)
	// Health checks the model endpoint is reachable.
	Health(ctx context.Context) error
}

type questionService struct {
	log            *logger.Logger
	db             *gorm.DB
	llm            ChatCompleter
	transcriptions repos.TranscriptionRepo
	generations    repos.GenerationRepo
	questions      repos.QuestionRepo
	cfg            QuestionServiceConfig
}

func NewQuestionService(
	baseLog *logger.Logger,
	db *gorm.DB,
	llm ChatCompleter,
	transcriptions repos.TranscriptionRepo,
	generations repos.GenerationRepo,
	questions repos.QuestionRepo,
	cfg QuestionServiceConfig,
) QuestionService {
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 5 * time.Minute
	}
	return &questionService{
		log:            baseLog.With("service", "QuestionService"),
		db:             db,
		llm:            llm,
		transcriptions: transcriptions,
		generations:    generations,
		questions:      questions,
		cfg:            cfg,
	}
}

func (s *questionService) Generate(ctx context.Context, videoIDs []string, count int) (*GenerateSummary, error) {
	count = ClampQuestionCount(count)
	ids := DedupIDs(videoIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no video ids given", ErrValidation)
	}

	// Gather the latest transcription per video.
	type source struct {
		videoID string
		text    string
	}
	var sources []source
	results := make([]GenerateResult, 0, len(ids))
	resultIndex := make(map[string]int, len(ids))
	for _, id := range ids {
		t, err := s.transcriptions.LatestByVideoID(ctx, nil, id)
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				results = append(results, GenerateResult{VideoID: id, Status: StatusNoTranscription})
			} else {
				results = append(results, GenerateResult{VideoID: id, Status: StatusFailed, Error: err.Error()})
			}
			resultIndex[id] = len(results) - 1
			continue
		}
		sources = append(sources, source{videoID: id, text: t.TranscriptionText})
		results = append(results, GenerateResult{VideoID: id, Status: StatusSuccess})
		resultIndex[id] = len(results) - 1
	}

	if len(sources) == 0 {
		// Nothing to prompt with; record the attempt so the batch is
		// auditable, with zero questions.
		gen, err := s.generations.Create(ctx, nil, &types.Generation{
			VideoIDs:      types.EncodeVideoIDs(ids),
			QuestionCount: 0,
		})
		if err != nil {
			return nil, err
		}
		successful, noTranscription, failed := summarize(results)
		return &GenerateSummary{
			GenerationID:    gen.ID,
			QuestionCount:   0,
			Total:           len(results),
			Successful:      successful,
			NoTranscription: noTranscription,
			Failed:          failed,
			Questions:       []*types.Question{},
			Results:         results,
		}, nil
	}

	// Each source gets an equal share of the prompt budget.
	share := promptCharBudget / len(sources)
	var sb strings.Builder
	validSources := make(map[string]bool, len(sources))
	for _, src := range sources {
		validSources[src.videoID] = true
		excerpt := TruncateUTF8(src.text, share)
		fmt.Fprintf(&sb, "=== VIDEO %s ===\n%s\n\n", src.videoID, excerpt)
	}

	raw, err := s.complete(ctx, buildQuestionPrompt(count), sb.String())
	if err != nil {
		s.log.Error("question generation failed after retries", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	items, err := ExtractQuestionItems(raw)
	if err != nil {
		s.log.Error("model response unparseable", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	fallbackVideo := ""
	if len(sources) == 1 {
		fallbackVideo = sources[0].videoID
	}
	rows := make([]*types.Question, 0, len(items))
	for _, item := range items {
		q, ok := item.ToQuestion(validSources, fallbackVideo)
		if !ok {
			continue
		}
		q.OrderIndex = len(rows)
		rows = append(rows, q)
		if len(rows) == count {
			break
		}
	}

	gen := &types.Generation{
		VideoIDs:      types.EncodeVideoIDs(ids),
		QuestionCount: len(rows),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.generations.Create(ctx, tx, gen); err != nil {
			return err
		}
		for _, q := range rows {
			q.GenerationID = gen.ID
		}
		_, err := s.questions.CreateAll(ctx, tx, rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	// A sourced video no valid item referenced counts as failed.
	attributed := make(map[string]bool, len(rows))
	for _, q := range rows {
		attributed[q.VideoID] = true
	}
	for id, idx := range resultIndex {
		if results[idx].Status == StatusSuccess && !attributed[id] {
			results[idx].Status = StatusFailed
			results[idx].Error = "no questions attributed to this video"
		}
	}

	s.log.Info("generation complete", "generation_id", gen.ID, "questions", len(rows))
	successful, noTranscription, failed := summarize(results)
	return &GenerateSummary{
		GenerationID:    gen.ID,
		QuestionCount:   len(rows),
		Total:           len(results),
		Successful:      successful,
		NoTranscription: noTranscription,
		Failed:          failed,
		Questions:       rows,
		Results:         results,
	}, nil
}

func (s *questionService) complete(ctx context.Context, system, user string) (string, error) {
	policy := RetryPolicy{
		MaxAttempts: llmMaxAttempts,
		Base:        time.Second,
		Cap:         30 * time.Second,
		Jitter:      0.5,
		Retryable:   IsRetryableProviderError,
	}
	var content string
	err := policy.Do(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
		defer cancel()
		resp, err := s.llm.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: s.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("chat response carried no choices")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	return content, err
}

func (s *questionService) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := s.llm.ListModels(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	return nil
}

// ClampQuestionCount applies the default and the [1, 50] bounds.
func ClampQuestionCount(count int) int {
	if count == 0 {
		return questionCountDefault
	}
	if count < 1 {
		return 1
	}
	if count > questionCountMax {
		return questionCountMax
	}
	return count
}

// DedupIDs drops repeated ids keeping first occurrence order.
func DedupIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func buildQuestionPrompt(count int) string {
	return fmt.Sprintf(`You create educational quiz questions from video transcripts.
Generate exactly %d questions covering the provided transcripts. Respond with
ONLY a JSON array, no prose, where each element is an object with fields:
"video_id" (the id from the === VIDEO === header the question came from),
"question_text" (required), "answer", "context" (the transcript excerpt the
question is based on), "difficulty" (one of easy, medium, hard) and
"question_type" (one of factual, conceptual, analytical).`, count)
}

// QuestionItem is one element of the model's JSON array response.
type QuestionItem struct {
	VideoID      string `json:"video_id"`
	QuestionText string `json:"question_text"`
	Answer       string `json:"answer"`
	Context      string `json:"context"`
	Difficulty   string `json:"difficulty"`
	QuestionType string `json:"question_type"`
}

// ToQuestion validates the item. Missing question text or an unattributable
// video id drops the item; out-of-enum difficulty and type are stored null.
func (it QuestionItem) ToQuestion(validVideos map[string]bool, fallbackVideo string) (*types.Question, bool) {
	text := strings.TrimSpace(it.QuestionText)
	if text == "" {
		return nil, false
	}
	videoID := strings.TrimSpace(it.VideoID)
	if !validVideos[videoID] {
		if fallbackVideo == "" {
			return nil, false
		}
		videoID = fallbackVideo
	}
	q := &types.Question{
		VideoID:      videoID,
		QuestionText: text,
	}
	if v := strings.TrimSpace(it.Answer); v != "" {
		q.Answer = &v
	}
	if v := strings.TrimSpace(it.Context); v != "" {
		q.Context = &v
	}
	if v := strings.ToLower(strings.TrimSpace(it.Difficulty)); types.ValidDifficulty(v) {
		q.Difficulty = &v
	}
	if v := strings.ToLower(strings.TrimSpace(it.QuestionType)); types.ValidQuestionType(v) {
		q.QuestionType = &v
	}
	return q, true
}

// ExtractQuestionItems pulls the first balanced JSON array out of the model
// output and decodes it. Models wrap arrays in code fences or prose often
// enough that strict whole-body decoding is not workable.
func ExtractQuestionItems(raw string) ([]QuestionItem, error) {
	arr, err := ExtractJSONArray(raw)
	if err != nil {
		return nil, err
	}
	var items []QuestionItem
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, fmt.Errorf("decode question array: %w", err)
	}
	return items, nil
}

// ExtractJSONArray returns the first balanced top-level JSON array in s,
// tracking string and escape state so brackets inside values don't count.
func ExtractJSONArray(s string) (string, error) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", fmt.Errorf("no JSON array in model output")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], nil
				}
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON array in model output")
}
