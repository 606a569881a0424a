package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/timmy/modguard/internal/domain"
)

func TestParseProfaneWords(t *testing.T) {
	long := strings.Repeat("x", maxWordRunes+1)
	many := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		many = append(many, `"w`+string(rune('a'+i%26))+string(rune('a'+i/26))+`"`)
	}

	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"object", `{"profaneWords":["Fuck","shit"]}`, []string{"fuck", "shit"}, false},
		{"fenced", "```json\n{\"profaneWords\": [\"crap\"]}\n```", []string{"crap"}, false},
		{"bare array", `["damn"]`, []string{"damn"}, false},
		{"prose around json", `Sure! Here you go: {"profaneWords": ["bloody"]} hope that helps`, []string{"bloody"}, false},
		{"non strings dropped", `{"profaneWords":["ok", 3, null, {"a":1}, " spaced "]}`, []string{"ok", "spaced"}, false},
		{"empty and long dropped", `{"profaneWords":["", "` + long + `", "arse"]}`, []string{"arse"}, false},
		{"duplicates collapsed", `{"profaneWords":["Damn","damn","DAMN"]}`, []string{"damn"}, false},
		{"null list", `{"profaneWords":null}`, []string{}, false},
		{"empty list", `{"profaneWords":[]}`, []string{}, false},
		{"missing key", `{"words_found":["x"]}`, nil, true},
		{"wrong type", `{"profaneWords":"fuck"}`, nil, true},
		{"not json", `I cannot help with that`, nil, true},
		{"empty", ``, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProfaneWords(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("capped", func(t *testing.T) {
		got, err := parseProfaneWords(`{"profaneWords":[` + strings.Join(many, ",") + `]}`)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != maxAIWords {
			t.Errorf("len = %d, want %d", len(got), maxAIWords)
		}
	})
}

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    domain.SentimentResult
		wantErr bool
	}{
		{
			name: "complete",
			raw:  `{"sentiment":"negative","score":-0.7,"toxicity":true,"explanation":" rude "}`,
			want: domain.SentimentResult{Sentiment: domain.SentimentNegative, Score: -0.7, Toxicity: true, Explanation: "rude"},
		},
		{
			name: "defaults",
			raw:  `{}`,
			want: domain.SentimentResult{Sentiment: domain.SentimentNeutral},
		},
		{
			name: "unknown label and string score",
			raw:  `{"sentiment":"furious","score":"0.25","toxicity":"true"}`,
			want: domain.SentimentResult{Sentiment: domain.SentimentNeutral, Score: 0.25, Toxicity: true},
		},
		{
			name: "clamped score and numeric toxicity",
			raw:  "```\n{\"sentiment\":\"positive\",\"score\":3,\"toxicity\":0}\n```",
			want: domain.SentimentResult{Sentiment: domain.SentimentPositive, Score: 1},
		},
		{
			name: "non-numeric score",
			raw:  `{"sentiment":"mixed","score":"very"}`,
			want: domain.SentimentResult{Sentiment: domain.SentimentMixed},
		},
		{name: "array", raw: `[1,2]`, wantErr: true},
		{name: "garbage", raw: `no json here`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSentiment(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractJSONBlock_IgnoresBracesInStrings(t *testing.T) {
	got, err := extractJSONBlock(`prefix {"a":"}{","b":[1]} suffix`)
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"a":"}{","b":[1]}` {
		t.Errorf("got %q", got)
	}
	if _, err := extractJSONBlock(`{"a":1`); err == nil {
		t.Error("expected error for unbalanced JSON")
	}
}

func TestClassifier_SoftFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("model error", func(t *testing.T) {
		c := NewClassifier(&fakeModel{profanityErr: errors.New("boom"), sentimentErr: errors.New("boom")}, 0)

		words, err := c.ExtractProfanity(ctx, "text")
		if err == nil || words == nil || len(words) != 0 {
			t.Errorf("ExtractProfanity = %#v, %v", words, err)
		}

		res, err := c.AnalyzeSentiment(ctx, "text")
		if err == nil {
			t.Error("expected error")
		}
		if res != domain.NeutralSentiment(sentimentCallFailed) {
			t.Errorf("AnalyzeSentiment = %+v", res)
		}
	})

	t.Run("malformed output", func(t *testing.T) {
		c := NewClassifier(&fakeModel{profanity: "nope", sentiment: "{broken"}, 0)

		words, err := c.ExtractProfanity(ctx, "text")
		if err == nil || len(words) != 0 {
			t.Errorf("ExtractProfanity = %#v, %v", words, err)
		}

		res, _ := c.AnalyzeSentiment(ctx, "text")
		if res != domain.NeutralSentiment(sentimentParseFailed) {
			t.Errorf("AnalyzeSentiment = %+v", res)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		c := NewClassifier(&fakeModel{block: true}, 20*time.Millisecond)

		start := time.Now()
		res, err := c.AnalyzeSentiment(ctx, "text")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want deadline exceeded", err)
		}
		if res.Sentiment != domain.SentimentNeutral {
			t.Errorf("sentiment = %q", res.Sentiment)
		}
		if time.Since(start) > 2*time.Second {
			t.Error("timeout was not applied")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		c := NewClassifier(NewLLMClient(nil), 0)
		if _, err := c.ExtractProfanity(ctx, "text"); !errors.Is(err, ErrClassifierDisabled) {
			t.Errorf("err = %v, want ErrClassifierDisabled", err)
		}
	})
}

func TestLLMClient_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"profaneWords\":[]}"}}]}`))
	}))
	defer srv.Close()

	client := NewLLMClient(&LLMConfig{Model: "test-model", APIKey: "secret", BaseURL: srv.URL + "/v1/", Timeout: time.Second})
	out, err := client.Generate(context.Background(), "hello", GenerateOptions{System: "sys", JSON: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"profaneWords":[]}` {
		t.Errorf("content = %q", out)
	}
	if got.Model != "test-model" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "hello" {
		t.Errorf("request = %+v", got)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v", got.ResponseFormat)
	}
}

func TestLLMClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error with message", http.StatusTooManyRequests, `{"error":{"message":"quota"}}`},
		{"http error plain", http.StatusBadGateway, `upstream down`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewLLMClient(&LLMConfig{Model: "m", APIKey: "k", BaseURL: srv.URL})
			if _, err := client.Generate(context.Background(), "hi", GenerateOptions{}); err == nil {
				t.Error("expected error")
			}
		})
	}
}
