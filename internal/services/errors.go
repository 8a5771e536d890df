package services

import (
	"errors"
	"fmt"
)

// Messages shown to visitors. They keep the assistant's sageuk voice.
const (
	msgFieldsRequired   = "성함과 남기실 말씀을 모두 적어주시옵소서."
	msgLengthExceeded   = "글자 수 제한을 확인해주시옵소서."
	msgStoreUnavailable = "데이터베이스 연결 실패."
	msgStoreWrite       = "방명록 저장 중 서버 오류 발생."

	msgHistoryRequired  = "잘못된 요청 형식: 'history' 필요"
	msgNoUsableTurns    = "처리할 유효한 대화 내용 없음"
	msgLastTurnNotUser  = "마지막 대화는 여쭈시는 분의 말씀이어야 하옵니다."
	msgUnknownRole      = "알 수 없는 대화 역할이옵니다."
	msgChatUnconfigured = "대화 모델을 초기화하지 못하였사옵니다."
	msgUpstream         = "API와 연결하는 중에 문제가 발생하였사옵니다."

	apologyBlocked = "송구하오나, 답변드릴 수 없사옵니다. (사유: %s)"
	apologyEmpty   = "송구하오나, 답변을 마련하는 중에 문제가 생겼사옵니다."
)

// ErrChatNotConfigured is returned by a chat backend built without credentials.
var ErrChatNotConfigured = errors.New("chat model is not configured")

// Custom errors
type ValidationError struct {
	Fields  map[string]string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StoreError reports a failed persistence call. Unavailable separates
// "could not reach the store" from "the write was rejected".
type StoreError struct {
	Unavailable bool
	Err         error
}

func (e *StoreError) Error() string {
	if e.Unavailable {
		return fmt.Sprintf("store unavailable: %v", e.Err)
	}
	return fmt.Sprintf("store write failed: %v", e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Message is the visitor-facing text for the failure.
func (e *StoreError) Message() string {
	if e.Unavailable {
		return msgStoreUnavailable
	}
	return msgStoreWrite
}

type ChatRequestError struct{ Message string }

func (e *ChatRequestError) Error() string { return e.Message }

// UpstreamError wraps a failed call to the hosted model.
type UpstreamError struct{ Err error }

func (e *UpstreamError) Error() string { return fmt.Sprintf("upstream model: %v", e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

// Message is the visitor-facing text for the failure.
func (e *UpstreamError) Message() string {
	if errors.Is(e.Err, ErrChatNotConfigured) {
		return msgChatUnconfigured
	}
	return msgUpstream
}
