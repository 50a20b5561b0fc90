package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/logger"
	"github.com/teampop/popcommerce/internal/prompts"
	"github.com/teampop/popcommerce/internal/repository"
)

// AnswerService composes chat answers: retrieve context, ask the
// model, then repair whatever shape the model actually returned into a
// stable ChatAnswer.
type AnswerService struct {
	retriever *Retriever
	generator Generator
	persona   *config.PersonaConfig
}

// NewAnswerService creates a new AnswerService.
// Parameters:
//   - retriever: hybrid context retriever.
//   - generator: language model client.
//   - persona: assistant identity and fixed fallback messages.
// Returns:
//   - *AnswerService: initialized service.
func NewAnswerService(retriever *Retriever, generator Generator, persona *config.PersonaConfig) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		generator: generator,
		persona:   persona,
	}
}

// Answer handles one chat turn. The last message is the active query;
// everything before it is history. An empty siteDomain falls back to
// answering without retrieval context.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - messages: full conversation, latest turn last.
//   - siteDomain: merchant domain selecting the crawl index, may be empty.
// Returns:
//   - *domain.ChatAnswer: stable answer shape, never nil on nil error.
//   - error: non-nil only when the request is malformed or the model
//     call itself fails.
func (s *AnswerService) Answer(ctx context.Context, messages []domain.ChatMessage, siteDomain string) (*domain.ChatAnswer, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	latest := messages[len(messages)-1].Content

	contextBlock := ""
	if siteDomain != "" {
		index := repository.DeriveIndexName(siteDomain)
		block, _, err := s.retriever.Retrieve(ctx, index, latest)
		if err != nil {
			if errors.Is(err, repository.ErrIndexNotFound) {
				logger.CtxInfo(ctx, "No crawl index for domain, asking shopper to crawl: domain=%s", siteDomain)
				return &domain.ChatAnswer{
					Answer:   s.persona.CrawlFirstMsg,
					Summary:  s.persona.CrawlFirstMsg,
					Sources:  []string{},
					Products: []domain.AnswerProduct{},
				}, nil
			}
			return nil, err
		}
		contextBlock = block
	}

	systemPrompt := prompts.SalesAssociate(prompts.Persona{
		Name:  s.persona.Name,
		Brand: s.persona.Brand,
		Style: s.persona.Style,
	}, contextBlock)

	raw, err := s.generator.Generate(ctx, systemPrompt, messages)
	if err != nil {
		return nil, err
	}

	answer := s.parseModelOutput(ctx, raw)
	return answer, nil
}

// modelPayload is the JSON contract the prompt asks the model to emit.
type modelPayload struct {
	Summary  string                 `json:"summary"`
	Answer   string                 `json:"answer"`
	Products []domain.AnswerProduct `json:"products"`
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	// Field rescues honor backslash escapes so values containing \" or
	// \n survive intact.
	summaryFieldRe = regexp.MustCompile(`"summary"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	answerFieldRe  = regexp.MustCompile(`"answer"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// parseModelOutput repairs the model's raw text into a ChatAnswer. The
// ladder: strip code fences, then brace-scan, then JSON parse; on
// parse failure rescue the summary/answer fields by regex; if even
// that fails, fall back to the fixed apology. Answer and Summary come
// out non-empty in every branch.
func (s *AnswerService) parseModelOutput(ctx context.Context, raw string) *domain.ChatAnswer {
	cleaned := strings.TrimSpace(raw)

	if m := fencedJSONRe.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	} else {
		first := strings.Index(cleaned, "{")
		last := strings.LastIndex(cleaned, "}")
		if first != -1 && last > first {
			cleaned = cleaned[first : last+1]
		}
	}

	var parsed modelPayload
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		logger.CtxWarn(ctx, "Failed to parse model JSON, attempting regex rescue: error=%v", err)
		return s.rescueByRegex(raw)
	}

	answer := parsed.Answer
	summary := parsed.Summary
	if answer == "" && summary != "" {
		answer = summary
	}

	var sources []string
	products := parsed.Products
	if summary == "" {
		summary = s.persona.FallbackMsg
		if answer == "" {
			answer = s.persona.FallbackMsg
		}
		sources = []string{}
	} else {
		sources = make([]string, 0, len(products))
		for _, p := range products {
			if p.ProductURL != "" {
				sources = append(sources, p.ProductURL)
			}
		}
	}
	if products == nil {
		products = []domain.AnswerProduct{}
	}

	return &domain.ChatAnswer{
		Answer:   answer,
		Summary:  summary,
		Sources:  sources,
		Products: products,
	}
}

// rescueByRegex pulls the summary and answer values straight out of the
// malformed text. Products and sources are unrecoverable at this point.
func (s *AnswerService) rescueByRegex(raw string) *domain.ChatAnswer {
	summary := s.persona.FallbackMsg
	if m := summaryFieldRe.FindStringSubmatch(raw); m != nil {
		summary = unescapeField(m[1])
	}

	answer := summary
	if m := answerFieldRe.FindStringSubmatch(raw); m != nil {
		answer = unescapeField(m[1])
	}

	return &domain.ChatAnswer{
		Answer:   answer,
		Summary:  summary,
		Sources:  []string{},
		Products: []domain.AnswerProduct{},
	}
}

// unescapeField undoes the two escapes that actually show up in
// regex-rescued JSON string values.
func unescapeField(v string) string {
	v = strings.ReplaceAll(v, `\n`, "\n")
	v = strings.ReplaceAll(v, `\"`, `"`)
	return v
}
