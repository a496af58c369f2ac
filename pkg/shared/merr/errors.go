// 指示: miu200521358
// Package merr はエラーIDと種別付きのエラーを提供する。
package merr

import (
	"errors"
	"fmt"
)

// エラーID一覧。
const (
	PreconditionViolationErrorID  = "AT001"
	InsufficientCandidatesErrorID = "AT002"
	StaleReferenceErrorID         = "AT003"
	InvalidSceneErrorID           = "AT004"
	NoProgressErrorID             = "AT005"
	IoExtInvalidErrorID           = "AT101"
	IoFileNotFoundErrorID         = "AT102"
	IoParseFailedErrorID          = "AT103"
	IoSaveFailedErrorID           = "AT104"
)

// 種別判定用の番兵エラー。
var (
	ErrPreconditionViolation  = errors.New("precondition violation")
	ErrInsufficientCandidates = errors.New("insufficient candidates")
	ErrStaleReference         = errors.New("stale reference")
	ErrInvalidScene           = errors.New("invalid scene")
	ErrNoProgress             = errors.New("no progress")
	ErrIoExtInvalid           = errors.New("invalid file extension")
	ErrIoFileNotFound         = errors.New("file not found")
	ErrIoParseFailed          = errors.New("parse failed")
	ErrIoSaveFailed           = errors.New("save failed")
)

// TinkerError はエラーIDと種別を持つエラーを表す。
type TinkerError struct {
	ID      string
	Kind    error
	Message string
	Cause   error
}

// Error はエラーメッセージを返す。
func (e *TinkerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.ID, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.ID, e.Message)
}

// Unwrap は種別と原因エラーを返す。
func (e *TinkerError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// NewPreconditionViolation は変更前に検出した前提条件違反エラーを生成する。
func NewPreconditionViolation(format string, params ...any) error {
	return newTinkerError(PreconditionViolationErrorID, ErrPreconditionViolation, nil, format, params...)
}

// NewInsufficientCandidates は統合候補不足エラーを生成する。
func NewInsufficientCandidates(format string, params ...any) error {
	return newTinkerError(InsufficientCandidatesErrorID, ErrInsufficientCandidates, nil, format, params...)
}

// NewStaleReference は再収集前の古い参照が渡されたエラーを生成する。
func NewStaleReference(format string, params ...any) error {
	return newTinkerError(StaleReferenceErrorID, ErrStaleReference, nil, format, params...)
}

// NewInvalidScene はシーン構造の不整合エラーを生成する。
func NewInvalidScene(cause error, format string, params ...any) error {
	return newTinkerError(InvalidSceneErrorID, ErrInvalidScene, cause, format, params...)
}

// NewNoProgress は一括処理が収束しないエラーを生成する。
func NewNoProgress(format string, params ...any) error {
	return newTinkerError(NoProgressErrorID, ErrNoProgress, nil, format, params...)
}

// NewIoExtInvalid は対応していない拡張子のエラーを生成する。
func NewIoExtInvalid(path string, cause error) error {
	return newTinkerError(IoExtInvalidErrorID, ErrIoExtInvalid, cause, "対応していない拡張子です: %s", path)
}

// NewIoFileNotFound はファイルが見つからないエラーを生成する。
func NewIoFileNotFound(path string, cause error) error {
	return newTinkerError(IoFileNotFoundErrorID, ErrIoFileNotFound, cause, "ファイルが見つかりません: %s", path)
}

// NewIoParseFailed は読み込み内容の解析失敗エラーを生成する。
func NewIoParseFailed(message string, cause error) error {
	return newTinkerError(IoParseFailedErrorID, ErrIoParseFailed, cause, "%s", message)
}

// NewIoSaveFailed は保存失敗エラーを生成する。
func NewIoSaveFailed(message string, cause error) error {
	return newTinkerError(IoSaveFailedErrorID, ErrIoSaveFailed, cause, "%s", message)
}

// ExtractErrorID はエラー連鎖からエラーIDを取り出す。見つからない場合は空文字を返す。
func ExtractErrorID(err error) string {
	var tinkerErr *TinkerError
	if errors.As(err, &tinkerErr) {
		return tinkerErr.ID
	}
	return ""
}

// IsPreconditionViolation は前提条件違反か判定する。
func IsPreconditionViolation(err error) bool {
	return errors.Is(err, ErrPreconditionViolation)
}

// IsInsufficientCandidates は統合候補不足か判定する。
func IsInsufficientCandidates(err error) bool {
	return errors.Is(err, ErrInsufficientCandidates)
}

// IsStaleReference は古い参照エラーか判定する。
func IsStaleReference(err error) bool {
	return errors.Is(err, ErrStaleReference)
}

func newTinkerError(id string, kind error, cause error, format string, params ...any) error {
	return &TinkerError{
		ID:      id,
		Kind:    kind,
		Message: fmt.Sprintf(format, params...),
		Cause:   cause,
	}
}
