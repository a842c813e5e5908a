package board

import (
	"fmt"
	"strings"
)

// Code 画板操作错误分类
// Code classifies board operation failures
type Code string

const (
	CodeLimitReached     Code = "LIMIT_REACHED"
	CodeSlotConflict     Code = "SLOT_CONFLICT"
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeStorageError     Code = "STORAGE_ERROR"
	CodeCorruptedData    Code = "CORRUPTED_DATA"
)

// Error 画板操作的结构化错误；UI 通过 errors.As 按 Code 渲染提示
// Error is a structured board operation failure; the UI matches on Code via errors.As
type Error struct {
	Code    Code
	Message string

	// SavedCount 触发 LIMIT_REACHED 时的已保存画板数
	// SavedCount is the saved-board count when LIMIT_REACHED fires
	SavedCount int

	// OccupiedBy 槽位冲突时占用该槽位的画板 ID
	// OccupiedBy is the board occupying the slot on SLOT_CONFLICT
	OccupiedBy string

	// Violations VALIDATION_FAILED / CORRUPTED_DATA 时收集到的全部违规项
	// Violations lists every collected violation for VALIDATION_FAILED / CORRUPTED_DATA
	Violations []string

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Violations) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Violations, "; "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// LimitReached 构造槽位已满错误 / LimitReached builds a slot-cap error
func LimitReached(savedCount int) *Error {
	return &Error{
		Code:       CodeLimitReached,
		Message:    fmt.Sprintf("all %d board slots are in use", MaxSaved),
		SavedCount: savedCount,
	}
}

// SlotConflict 构造槽位被占用错误 / SlotConflict builds a slot-occupied error
func SlotConflict(slot int, occupiedBy string) *Error {
	return &Error{
		Code:       CodeSlotConflict,
		Message:    fmt.Sprintf("slot %d is already occupied", slot),
		OccupiedBy: occupiedBy,
	}
}

// NotFound 构造画板不存在错误 / NotFound builds a board-not-found error
func NotFound(id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("board %s does not exist", id)}
}

// ValidationFailed 构造校验失败错误 / ValidationFailed builds a validation error
func ValidationFailed(violations ...string) *Error {
	return &Error{Code: CodeValidationFailed, Message: "validation failed", Violations: violations}
}

// StorageFailed 包装后端存储错误 / StorageFailed wraps a backend storage failure
func StorageFailed(op string, err error) *Error {
	return &Error{Code: CodeStorageError, Message: op, Err: err}
}

// Corrupted 构造数据损坏错误 / Corrupted builds a corrupted-data error
func Corrupted(id string, violations []string) *Error {
	return &Error{
		Code:       CodeCorruptedData,
		Message:    fmt.Sprintf("stored payload for board %s is invalid", id),
		Violations: violations,
	}
}
