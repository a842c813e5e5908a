package schema

import (
	"math"
	"strings"
	"testing"

	"whiteboard/internal/board"
)

func validPayload() board.Payload {
	return board.Payload{
		Strokes: []board.Stroke{
			{ID: "s1", Kind: "line", Points: []float64{0, 0, 10, 10}, Color: "#000000", StrokeWidth: 2},
			{ID: "s2", Kind: "arrow", Points: []float64{5, 5, 20, 5}, Color: "#FF0000", StrokeWidth: 4},
		},
		Icons: []board.Icon{
			{ID: "i1", X: 12, Y: 34, Image: "flag.png"},
		},
		Preferences: board.Preferences{BrushColor: "#000000", BrushWidth: 2},
	}
}

func TestValidatePayload_Valid(t *testing.T) {
	res := ValidatePayload(validPayload())
	if !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
}

func TestValidatePayload_EmptyBoard(t *testing.T) {
	res := ValidatePayload(board.EmptyPayload())
	if !res.Valid {
		t.Fatalf("empty board should be valid, got errors: %v", res.Errors)
	}
}

func TestValidatePayload_MissingArrays(t *testing.T) {
	res := ValidatePayload(board.Payload{})
	if res.Valid {
		t.Fatal("zero payload should be invalid")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 errors (strokes, icons), got %v", res.Errors)
	}
}

// 校验收集全部违规项而不是遇到第一个就停
// Validation collects every violation instead of stopping at the first
func TestValidatePayload_CollectsAllViolations(t *testing.T) {
	p := validPayload()
	p.Strokes = append(p.Strokes,
		board.Stroke{ID: "", Points: nil, Color: "", StrokeWidth: math.NaN()},
	)
	p.Icons = append(p.Icons, board.Icon{ID: "", X: math.Inf(1), Image: ""})

	res := ValidatePayload(p)
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Errors) < 6 {
		t.Fatalf("expected at least 6 collected violations, got %d: %v", len(res.Errors), res.Errors)
	}
	joined := strings.Join(res.Errors, "\n")
	for _, want := range []string{"strokes[2].id", "strokes[2].points", "strokes[2].color", "strokes[2].strokeWidth", "icons[1].id", "icons[1].image"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing violation %q in %v", want, res.Errors)
		}
	}
}

func TestValidatePayload_PermissivePreferences(t *testing.T) {
	p := validPayload()
	// 旧版本偏好集：未知字段进 Extra，内部字段不逐个校验
	// Older preference sets: unknown fields land in Extra, inner fields are not checked
	p.Preferences = board.Preferences{Extra: map[string]any{"legacyOption": true}}
	if res := ValidatePayload(p); !res.Valid {
		t.Fatalf("permissive preferences should pass, got %v", res.Errors)
	}
}
