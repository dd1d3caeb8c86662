package services

import "errors"

// ストア系エラーの区別。「見つからない」と「ストアに到達できない」は
// 呼び出し側で扱いが違うため、センチネルで分けて返す。
var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSaveConversation は応答生成後のセッション書き込み失敗。
	// 生成失敗（フォールバック文で吸収される）とは別物として伝播させる。
	ErrSaveConversation = errors.New("failed to save conversation")
)
