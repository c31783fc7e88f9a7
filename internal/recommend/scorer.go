// Package recommend ranks candidate videos for a viewer by tag overlap.
//
// Everything here is a pure function of its inputs: no database, no clock
// other than the Now field, no shared state. Scoring always runs over the
// whole candidate pool; callers paginate the ranked result afterwards.
package recommend

import (
	"math"
	"sort"
	"time"
)

const (
	completedWeight  = 2.0
	minPartialWeight = 0.5
	maxPartialWeight = 1.0

	// RecentWindow 冷启动时，这个时间窗口内发布的视频算作“最近”
	RecentWindow = 48 * time.Hour

	topTagCount = 5
)

type FeedType string

const (
	FeedPopular         FeedType = "popular"
	FeedContentBased    FeedType = "content_based"
	FeedPreferenceBased FeedType = "preference_based"
	FeedTrendingPopular FeedType = "trending_popular"
)

// WatchRecord 一条观看记录，Tags 和 Duration 来自被观看的视频
type WatchRecord struct {
	Tags           []string
	WatchedSeconds float64
	Duration       float64
	Completed      bool
}

// Candidate 参与排序的候选视频
type Candidate struct {
	ID          uint64
	Tags        []string
	Views       uint64
	PublishedAt time.Time
}

type Scored struct {
	Candidate
	Score float64
}

type TagScore struct {
	Tag   string  `json:"tag"`
	Score float64 `json:"score"`
}

type Input struct {
	// Anonymous 为true时跳过所有打分，只按播放量排序
	Anonymous      bool
	History        []WatchRecord
	Candidates     []Candidate
	PreferenceTags []string
	Now            time.Time
}

type Result struct {
	Items           []Scored
	FeedType        FeedType
	Personalized    bool
	NeedsOnboarding bool
	TopTags         []TagScore
}

// RecordWeight 完整看完记2分；否则按观看比例，下限0.5、上限1.0，时长缺失按1处理
func RecordWeight(r WatchRecord) float64 {
	if r.Completed {
		return completedWeight
	}
	duration := r.Duration
	if duration <= 0 {
		duration = 1
	}
	w := r.WatchedSeconds / duration
	if w < minPartialWeight {
		w = minPartialWeight
	}
	if w > maxPartialWeight {
		w = maxPartialWeight
	}
	return w
}

// TagAffinity 把每条观看记录的权重累加到它视频的每个标签上
func TagAffinity(history []WatchRecord) map[string]float64 {
	affinity := make(map[string]float64)
	for _, r := range history {
		if len(r.Tags) == 0 {
			continue
		}
		w := RecordWeight(r)
		for _, tag := range r.Tags {
			affinity[tag] += w
		}
	}
	return affinity
}

// ScoreTags 视频得分 = 它每个标签的亲和度之和，不在亲和表里的标签记0
func ScoreTags(tags []string, affinity map[string]float64) float64 {
	var score float64
	for _, tag := range tags {
		score += affinity[tag]
	}
	return score
}

// Rank 按观看者的状态选择策略并返回完整的有序列表
func Rank(in Input) Result {
	switch {
	case in.Anonymous:
		return Result{Items: rankByViews(in.Candidates), FeedType: FeedPopular}

	case len(in.History) > 0:
		affinity := TagAffinity(in.History)
		items := make([]Scored, len(in.Candidates))
		for i, c := range in.Candidates {
			items[i] = Scored{Candidate: c, Score: ScoreTags(c.Tags, affinity)}
		}
		sortByScoreThenViews(items)
		return Result{
			Items:        items,
			FeedType:     FeedContentBased,
			Personalized: true,
			TopTags:      TopTags(affinity, topTagCount),
		}

	case len(in.PreferenceTags) > 0:
		prefs := make(map[string]struct{}, len(in.PreferenceTags))
		for _, t := range in.PreferenceTags {
			prefs[t] = struct{}{}
		}
		items := make([]Scored, len(in.Candidates))
		for i, c := range in.Candidates {
			var overlap float64
			for _, tag := range c.Tags {
				if _, ok := prefs[tag]; ok {
					overlap++
				}
			}
			items[i] = Scored{Candidate: c, Score: overlap}
		}
		sortByScoreThenViews(items)
		return Result{Items: items, FeedType: FeedPreferenceBased, Personalized: true}

	default:
		cutoff := in.Now.Add(-RecentWindow)
		var recent, older []Candidate
		for _, c := range in.Candidates {
			if !c.PublishedAt.Before(cutoff) {
				recent = append(recent, c)
			} else {
				older = append(older, c)
			}
		}
		items := append(rankByViews(recent), rankByViews(older)...)
		return Result{Items: items, FeedType: FeedTrendingPopular, NeedsOnboarding: true}
	}
}

func rankByViews(cs []Candidate) []Scored {
	items := make([]Scored, len(cs))
	for i, c := range cs {
		items[i] = Scored{Candidate: c}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Views > items[j].Views
	})
	return items
}

func sortByScoreThenViews(items []Scored) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Views > items[j].Views
	})
}

// TopTags 亲和度最高的n个标签，分数相同按字母序
func TopTags(affinity map[string]float64, n int) []TagScore {
	out := make([]TagScore, 0, len(affinity))
	for tag, score := range affinity {
		out = append(out, TagScore{Tag: tag, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Paginate 对排好序的完整列表做 (page-1)*limit 到 page*limit 的切片
func Paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return []T{}
	}
	// 页码大到乘法会溢出时，一定已经越过末尾
	if page-1 > math.MaxInt/limit {
		return []T{}
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
