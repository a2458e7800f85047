package services

import (
	"testing"

	"github.com/vidscholar/vidscholar-backend/internal/types"
)

func TestExtractJSONArray(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "bare_array",
			raw:  `[{"a":1}]`,
			want: `[{"a":1}]`,
		},
		{
			name: "code_fence",
			raw:  "Here you go:\n```json\n[{\"a\":1},{\"b\":2}]\n```\nEnjoy!",
			want: `[{"a":1},{"b":2}]`,
		},
		{
			name: "brackets_inside_strings",
			raw:  `prefix [{"q":"what is a[0]?","note":"see ] here"}] suffix`,
			want: `[{"q":"what is a[0]?","note":"see ] here"}]`,
		},
		{
			name: "escaped_quote_inside_string",
			raw:  `[{"q":"he said \"hi [there]\""}]`,
			want: `[{"q":"he said \"hi [there]\""}]`,
		},
		{
			name: "nested_arrays",
			raw:  `[[1,2],[3,4]] trailing`,
			want: `[[1,2],[3,4]]`,
		},
		{
			name:    "no_array",
			raw:     "sorry, I cannot do that",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			raw:     `[{"a":1}`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSONArray(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ExtractJSONArray=%q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSONArray error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ExtractJSONArray=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractQuestionItems(t *testing.T) {
	raw := "```json\n" + `[
		{"video_id":"abc12345678","question_text":"What is X?","answer":"Y","difficulty":"easy","question_type":"factual"},
		{"video_id":"abc12345678","question_text":"Why Z?","difficulty":"impossible"}
	]` + "\n```"
	items, err := ExtractQuestionItems(raw)
	if err != nil {
		t.Fatalf("ExtractQuestionItems error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].QuestionText != "What is X?" || items[1].Difficulty != "impossible" {
		t.Fatalf("items decoded wrong: %+v", items)
	}
}

func TestQuestionItemToQuestion(t *testing.T) {
	valid := map[string]bool{"vid00000001": true}

	t.Run("enum_values_outside_set_become_null", func(t *testing.T) {
		item := QuestionItem{
			VideoID:      "vid00000001",
			QuestionText: "What?",
			Difficulty:   "impossible",
			QuestionType: "trick",
		}
		q, ok := item.ToQuestion(valid, "")
		if !ok {
			t.Fatalf("item dropped")
		}
		if q.Difficulty != nil || q.QuestionType != nil {
			t.Fatalf("invalid enums stored: %+v", q)
		}
	})

	t.Run("enum_values_normalized_to_lowercase", func(t *testing.T) {
		item := QuestionItem{
			VideoID:      "vid00000001",
			QuestionText: "What?",
			Difficulty:   "Medium",
			QuestionType: "FACTUAL",
		}
		q, ok := item.ToQuestion(valid, "")
		if !ok {
			t.Fatalf("item dropped")
		}
		if q.Difficulty == nil || *q.Difficulty != "medium" {
			t.Fatalf("difficulty = %v", q.Difficulty)
		}
		if q.QuestionType == nil || *q.QuestionType != "factual" {
			t.Fatalf("question_type = %v", q.QuestionType)
		}
	})

	t.Run("missing_question_text_drops_item", func(t *testing.T) {
		item := QuestionItem{VideoID: "vid00000001", QuestionText: "   "}
		if _, ok := item.ToQuestion(valid, ""); ok {
			t.Fatalf("blank question text kept")
		}
	})

	t.Run("unknown_video_id_falls_back_when_single_source", func(t *testing.T) {
		item := QuestionItem{VideoID: "nope", QuestionText: "What?"}
		q, ok := item.ToQuestion(valid, "vid00000001")
		if !ok {
			t.Fatalf("item dropped despite fallback")
		}
		if q.VideoID != "vid00000001" {
			t.Fatalf("video id = %q", q.VideoID)
		}
	})

	t.Run("unknown_video_id_drops_without_fallback", func(t *testing.T) {
		item := QuestionItem{VideoID: "nope", QuestionText: "What?"}
		if _, ok := item.ToQuestion(valid, ""); ok {
			t.Fatalf("unattributable item kept")
		}
	})

	t.Run("optional_strings_stored_null_when_blank", func(t *testing.T) {
		item := QuestionItem{VideoID: "vid00000001", QuestionText: "What?", Answer: " ", Context: ""}
		q, _ := item.ToQuestion(valid, "")
		if q.Answer != nil || q.Context != nil {
			t.Fatalf("blank optionals stored: %+v", q)
		}
	})
}

func TestClampQuestionCount(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 10},
		{-3, 1},
		{1, 1},
		{25, 25},
		{50, 50},
		{51, 50},
		{1000, 50},
	}
	for _, tc := range cases {
		if got := ClampQuestionCount(tc.in); got != tc.want {
			t.Fatalf("ClampQuestionCount(%d)=%d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestDedupIDs(t *testing.T) {
	got := DedupIDs([]string{"a", "b", " a ", "", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("DedupIDs=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DedupIDs=%v, want %v", got, want)
		}
	}
}

func TestValidEnumsMatchModel(t *testing.T) {
	for _, d := range types.QuestionDifficulties {
		if !types.ValidDifficulty(d) {
			t.Fatalf("difficulty %q not accepted", d)
		}
	}
	for _, qt := range types.QuestionTypes {
		if !types.ValidQuestionType(qt) {
			t.Fatalf("question type %q not accepted", qt)
		}
	}
}
