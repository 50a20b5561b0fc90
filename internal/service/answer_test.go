package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/repository"
)

type fakeGenerator struct {
	output string
	err    error
	gotSys string
}

func (f *fakeGenerator) Generate(_ context.Context, systemPrompt string, _ []domain.ChatMessage) (string, error) {
	f.gotSys = systemPrompt
	return f.output, f.err
}

func testPersona() *config.PersonaConfig {
	return &config.PersonaConfig{
		Name:          "AI Sales Associate",
		Brand:         "this store",
		Style:         "Professional, concise.",
		CrawlFirstMsg: "I couldn't find a crawl index for this site yet. Please crawl the site and try again.",
		FallbackMsg:   "I'm sorry, I don't have that information right now, but I'd love to help with something else!",
	}
}

func newAnswerService(gen Generator) *AnswerService {
	return NewAnswerService(nil, gen, testPersona())
}

func ask(t *testing.T, svc *AnswerService, raw string) *domain.ChatAnswer {
	t.Helper()
	gen := svc.generator.(*fakeGenerator)
	gen.output = raw

	answer, err := svc.Answer(context.Background(), []domain.ChatMessage{
		{Role: "user", Content: "any red shoes?"},
	}, "")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	return answer
}

func TestAnswerFencedJSON(t *testing.T) {
	svc := newAnswerService(&fakeGenerator{})
	raw := "Here you go:\n```json\n{\"summary\": \"Red shoes in stock!\", \"answer\": \"We have two red options.\", \"products\": [{\"name\": \"Red Runner\", \"price\": \"$59\", \"image_url\": \"\", \"product_url\": \"https://example.com/red\"}]}\n```"

	answer := ask(t, svc, raw)

	if answer.Answer != "We have two red options." {
		t.Errorf("answer = %q", answer.Answer)
	}
	if answer.Summary != "Red shoes in stock!" {
		t.Errorf("summary = %q", answer.Summary)
	}
	if len(answer.Products) != 1 || answer.Products[0].Name != "Red Runner" {
		t.Errorf("products = %+v", answer.Products)
	}
	if len(answer.Sources) != 1 || answer.Sources[0] != "https://example.com/red" {
		t.Errorf("sources = %v, want product purchase URL", answer.Sources)
	}
}

func TestAnswerBraceScan(t *testing.T) {
	svc := newAnswerService(&fakeGenerator{})
	raw := `Sure! {"summary": "One match.", "answer": "The Red Runner fits.", "products": []} Hope that helps.`

	answer := ask(t, svc, raw)

	if answer.Answer != "The Red Runner fits." {
		t.Errorf("answer = %q", answer.Answer)
	}
	if answer.Summary != "One match." {
		t.Errorf("summary = %q", answer.Summary)
	}
	if len(answer.Products) != 0 {
		t.Errorf("products = %+v, want empty", answer.Products)
	}
}

func TestAnswerRegexRescue(t *testing.T) {
	svc := newAnswerService(&fakeGenerator{})
	// Truncated JSON that cannot parse but still carries both fields
	raw := `{"summary": "Quick look!", "answer": "Try the \"Red\" Runner.\nGreat fit.", "products": [{"name": "Red`

	answer := ask(t, svc, raw)

	if answer.Summary != "Quick look!" {
		t.Errorf("summary = %q", answer.Summary)
	}
	if answer.Answer != "Try the \"Red\" Runner.\nGreat fit." {
		t.Errorf("answer = %q, escapes not undone", answer.Answer)
	}
	if len(answer.Products) != 0 {
		t.Errorf("products = %+v, rescue cannot recover products", answer.Products)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("sources = %v, rescue cannot recover sources", answer.Sources)
	}
}

func TestAnswerTotalGarbage(t *testing.T) {
	svc := newAnswerService(&fakeGenerator{})

	answer := ask(t, svc, "I refuse to emit JSON today.")

	fallback := testPersona().FallbackMsg
	if answer.Answer != fallback {
		t.Errorf("answer = %q, want fallback", answer.Answer)
	}
	if answer.Summary != fallback {
		t.Errorf("summary = %q, want fallback", answer.Summary)
	}
	if len(answer.Sources) != 0 || len(answer.Products) != 0 {
		t.Errorf("garbage output produced sources=%v products=%+v", answer.Sources, answer.Products)
	}
}

func TestAnswerEmptyAnswerFallsBackToSummary(t *testing.T) {
	svc := newAnswerService(&fakeGenerator{})

	answer := ask(t, svc, `{"summary": "Only a summary.", "answer": "", "products": []}`)

	if answer.Answer != "Only a summary." {
		t.Errorf("answer = %q, want summary fallback", answer.Answer)
	}
}

func TestAnswerEmptySummaryUsesApology(t *testing.T) {
	svc := newAnswerService(&fakeGenerator{})

	answer := ask(t, svc, `{"summary": "", "answer": "", "products": [{"name": "X", "product_url": "https://example.com/x"}]}`)

	fallback := testPersona().FallbackMsg
	if answer.Summary != fallback || answer.Answer != fallback {
		t.Errorf("answer=%q summary=%q, want fallback for both", answer.Answer, answer.Summary)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("sources = %v, want empty when answer is the apology", answer.Sources)
	}
}

func TestAnswerSourcesSkipEmptyProductURLs(t *testing.T) {
	svc := newAnswerService(&fakeGenerator{})

	answer := ask(t, svc, `{"summary": "Two finds.", "answer": "Both work.", "products": [
		{"name": "A", "product_url": "https://example.com/a"},
		{"name": "B", "product_url": ""}
	]}`)

	if len(answer.Sources) != 1 || answer.Sources[0] != "https://example.com/a" {
		t.Errorf("sources = %v, want only the non-empty purchase URL", answer.Sources)
	}
	if len(answer.Products) != 2 {
		t.Errorf("products = %+v, want both kept", answer.Products)
	}
}

func TestAnswerNoMessages(t *testing.T) {
	svc := newAnswerService(&fakeGenerator{})

	if _, err := svc.Answer(context.Background(), nil, ""); err == nil {
		t.Error("Answer with no messages returned nil error")
	}
}

func TestAnswerCrawlFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	elastic := repository.NewElasticRepository(&repository.ElasticConnectionConfig{URL: srv.URL})
	retriever := NewRetriever(elastic, 3)
	gen := &fakeGenerator{output: `{"summary": "should not be called", "answer": "x"}`}
	svc := NewAnswerService(retriever, gen, testPersona())

	answer, err := svc.Answer(context.Background(), []domain.ChatMessage{
		{Role: "user", Content: "hello"},
	}, "https://never-crawled.example")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	crawlFirst := testPersona().CrawlFirstMsg
	if answer.Answer != crawlFirst || answer.Summary != crawlFirst {
		t.Errorf("answer=%q summary=%q, want crawl-first message", answer.Answer, answer.Summary)
	}
	if gen.gotSys != "" {
		t.Error("model was called despite missing index")
	}
}
