package schema

import (
	"fmt"
	"math"

	"whiteboard/internal/board"
)

// Result 校验结果；收集全部违规项而不是遇错即停
// Result is a validation outcome; every violation is collected instead of failing fast
type Result struct {
	Valid  bool
	Errors []string
}

// ValidatePayload 对画板内容做结构校验（非业务校验）。不会 panic，总是返回结果。
// ValidatePayload structurally checks a board payload (not business rules).
// It never panics and always returns a Result.
func ValidatePayload(p board.Payload) Result {
	var errs []string

	if p.Strokes == nil {
		errs = append(errs, "strokes: missing or not an array")
	}
	for i, s := range p.Strokes {
		if s.ID == "" {
			errs = append(errs, fmt.Sprintf("strokes[%d].id: empty", i))
		}
		if s.Points == nil {
			errs = append(errs, fmt.Sprintf("strokes[%d].points: missing or not an array", i))
		}
		for j, v := range s.Points {
			if !finite(v) {
				errs = append(errs, fmt.Sprintf("strokes[%d].points[%d]: not a finite number", i, j))
				break
			}
		}
		if s.Color == "" {
			errs = append(errs, fmt.Sprintf("strokes[%d].color: empty", i))
		}
		if !finite(s.StrokeWidth) {
			errs = append(errs, fmt.Sprintf("strokes[%d].strokeWidth: not a finite number", i))
		}
	}

	if p.Icons == nil {
		errs = append(errs, "icons: missing or not an array")
	}
	for i, ic := range p.Icons {
		if ic.ID == "" {
			errs = append(errs, fmt.Sprintf("icons[%d].id: empty", i))
		}
		if !finite(ic.X) || !finite(ic.Y) {
			errs = append(errs, fmt.Sprintf("icons[%d]: x/y not finite numbers", i))
		}
		if ic.Image == "" {
			errs = append(errs, fmt.Sprintf("icons[%d].image: empty", i))
		}
	}

	// 偏好设置只要求存在；内部字段保持宽松，旧版本偏好集也能通过
	// Preferences only need to be present; inner fields stay permissive

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
