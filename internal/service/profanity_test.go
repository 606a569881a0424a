package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/timmy/modguard/internal/domain"
)

func TestProfanityService_LocalMatchSkipsModel(t *testing.T) {
	env := newTestEnv(t, &fakeModel{profanity: `{"profaneWords":["should-not-be-used"]}`}, "damn", "hell")

	verdict, err := env.profanity.Evaluate(context.Background(), "Well damn, that was close")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := domain.ModerationVerdict{Blocked: true, MatchedWords: []string{"damn"}, Source: domain.VerdictSourceLocal}
	if !reflect.DeepEqual(verdict, want) {
		t.Errorf("verdict = %+v, want %+v", verdict, want)
	}
	if p, _ := env.model.calls(); p != 0 {
		t.Errorf("model called %d times, want 0", p)
	}
}

func TestProfanityService_ModelFindingIsLearned(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeModel{profanity: `{"profaneWords":["Fucking"]}`}, "fuck")

	verdict, err := env.profanity.Evaluate(ctx, "this fucking thing")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := domain.ModerationVerdict{Blocked: true, MatchedWords: []string{"fucking"}, Source: domain.VerdictSourceAI}
	if !reflect.DeepEqual(verdict, want) {
		t.Errorf("verdict = %+v, want %+v", verdict, want)
	}

	learned, err := env.lexicon.Exists(ctx, "fucking")
	if err != nil || !learned {
		t.Fatalf("word not learned: %v %v", learned, err)
	}

	// The next request containing the learned word is decided locally.
	verdict, err = env.profanity.Evaluate(ctx, "FUCKING again")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if verdict.Source != domain.VerdictSourceLocal {
		t.Errorf("source = %q, want local", verdict.Source)
	}
	if p, _ := env.model.calls(); p != 1 {
		t.Errorf("model called %d times, want 1", p)
	}
}

func TestProfanityService_SoftFailIsClean(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"malformed payload", &fakeModel{profanity: `{"profaneWords": "everything"}`}},
		{"prose", &fakeModel{profanity: `Nothing offensive here.`}},
		{"empty list", &fakeModel{profanity: `{"profaneWords": []}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.model, "damn")

			verdict, err := env.profanity.Evaluate(context.Background(), "a perfectly nice sentence")
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if !reflect.DeepEqual(verdict, domain.CleanVerdict()) {
				t.Errorf("verdict = %+v, want clean", verdict)
			}
			if n, _ := env.lexicon.Count(context.Background()); n != 1 {
				t.Errorf("lexicon size = %d, want 1", n)
			}
		})
	}
}

func TestProfanityService_CheckText(t *testing.T) {
	env := newTestEnv(t, &fakeModel{profanity: `{"profaneWords":[]}`}, "ass")
	ctx := context.Background()

	out, err := env.profanity.CheckText(ctx, "kick ass")
	if err != nil || !out.Blocked {
		t.Errorf("CheckText(kick ass) = %+v, %v; want blocked", out, err)
	}

	out, err = env.profanity.CheckText(ctx, "first class")
	if err != nil || out.Blocked || out.Text != "first class" {
		t.Errorf("CheckText(first class) = %+v, %v; want clean", out, err)
	}
}

func TestProfanityService_AddAndLookup(t *testing.T) {
	env := newTestEnv(t, &fakeModel{})
	ctx := context.Background()

	entry, created, err := env.profanity.AddSwearWord(ctx, "  Bollocks ")
	if err != nil || !created || entry.Word != "bollocks" {
		t.Fatalf("AddSwearWord = %+v, %v, %v", entry, created, err)
	}
	again, created, err := env.profanity.AddSwearWord(ctx, "BOLLOCKS")
	if err != nil || created || again.ID != entry.ID {
		t.Fatalf("second AddSwearWord = %+v, %v, %v", again, created, err)
	}

	for word, want := range map[string]bool{"bollocks": true, "Bollocks": true, "bollock": false} {
		got, err := env.profanity.IsSwearWord(ctx, word)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("IsSwearWord(%q) = %v, want %v", word, got, want)
		}
	}

	if _, _, err := env.profanity.AddSwearWord(ctx, "   "); err == nil {
		t.Error("expected error for blank word")
	}
	if p, _ := env.model.calls(); p != 0 {
		t.Errorf("model called %d times, want 0", p)
	}
}

func TestProfanityService_MaskedWordDoesNotLeak(t *testing.T) {
	ctx := context.Background()
	model := &fakeModel{profanity: `{"profaneWords":["a$$"]}`}
	env := newTestEnv(t, model, "damn")

	verdict, err := env.profanity.Evaluate(ctx, "kiss my a$$")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !verdict.Blocked || verdict.Source != domain.VerdictSourceAI {
		t.Fatalf("verdict = %+v, want blocked by model", verdict)
	}
	if ok, _ := env.lexicon.Exists(ctx, "a$$"); !ok {
		t.Fatal("a$$ not learned")
	}

	model.mu.Lock()
	model.profanity = `{"profaneWords":[]}`
	model.mu.Unlock()

	verdict, err = env.profanity.Evaluate(ctx, "what a lovely day")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !reflect.DeepEqual(verdict, domain.CleanVerdict()) {
		t.Errorf("verdict = %+v, want clean", verdict)
	}

	verdict, err = env.profanity.Evaluate(ctx, "Such an A$$!")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if verdict.Source != domain.VerdictSourceLocal || !reflect.DeepEqual(verdict.MatchedWords, []string{"a$$"}) {
		t.Errorf("verdict = %+v, want local a$$", verdict)
	}
}

func TestProfanityService_AbsentModelWordsNotLearned(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeModel{profanity: `{"profaneWords":["the","tosser"]}`})

	verdict, err := env.profanity.Evaluate(ctx, "you tosser")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !verdict.Blocked {
		t.Fatalf("verdict = %+v, want blocked", verdict)
	}

	for word, want := range map[string]bool{"tosser": true, "the": false} {
		got, err := env.lexicon.Exists(ctx, word)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("learned %q = %v, want %v", word, got, want)
		}
	}
}
