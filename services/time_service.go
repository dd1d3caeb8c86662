package services

import "time"

// セッション用タイムスタンプの形式。秒精度で、文字列比較がそのまま
// 時刻順になるように桁を固定している。
const sessionTimestampLayout = "2006-01-02-15-04-05"

// SessionTimestamp は現在時刻をセッション用タイムスタンプ形式で返します
func SessionTimestamp() string {
	return time.Now().Format(sessionTimestampLayout)
}

// GetCurrentTimestamp は現在のタイムスタンプをISO8601形式で返します
func GetCurrentTimestamp() string {
	return time.Now().Format(time.RFC3339)
}
