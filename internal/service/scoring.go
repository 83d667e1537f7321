package service

import (
	"context"
	"math/rand/v2"
)

// 占位评分策略：在 [50, 100) 内均匀取整数
const (
	minRecordingScore = 50
	maxRecordingScore = 100

	// RetriesLeft 返回给客户端的剩余重试次数，仅提示用，不持久化也不递减
	RetriesLeft = 2
)

// 录音反馈短语
const (
	FeedbackExcellent = "Excellent pronunciation!"
	FeedbackGood      = "Good effort, keep it up!"
	FeedbackPractice  = "Keep practicing!"
)

// Scorer 将录音引用转换为得分；实现不得解析音频以外的上下文
type Scorer interface {
	Score(ctx context.Context, audioRef string) int
}

// RandomScorer 随机占位评分
type RandomScorer struct{}

func (RandomScorer) Score(context.Context, string) int {
	return minRecordingScore + rand.IntN(maxRecordingScore-minRecordingScore)
}

// FeedbackPhrase 按阈值选择反馈短语：>80 优秀，>50 鼓励，其余继续练习
func FeedbackPhrase(score int) string {
	switch {
	case score > 80:
		return FeedbackExcellent
	case score > 50:
		return FeedbackGood
	default:
		return FeedbackPractice
	}
}
