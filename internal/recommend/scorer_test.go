package recommend

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func ids(items []Scored) []uint64 {
	out := make([]uint64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestRecordWeight(t *testing.T) {
	tests := []struct {
		name string
		r    WatchRecord
		want float64
	}{
		{name: "completed", r: WatchRecord{Completed: true, WatchedSeconds: 1, Duration: 100}, want: 2.0},
		{name: "half watched", r: WatchRecord{WatchedSeconds: 60, Duration: 100}, want: 0.6},
		{name: "floor", r: WatchRecord{WatchedSeconds: 5, Duration: 100}, want: 0.5},
		{name: "over-watched is capped", r: WatchRecord{WatchedSeconds: 300, Duration: 100}, want: 1.0},
		{name: "zero duration treated as one second", r: WatchRecord{WatchedSeconds: 0.7, Duration: 0}, want: 0.7},
		{name: "negative duration treated as one second", r: WatchRecord{WatchedSeconds: 0.2, Duration: -3}, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RecordWeight(tt.r), 1e-9)
		})
	}
}

func TestTagAffinityAccumulates(t *testing.T) {
	history := []WatchRecord{
		{Tags: []string{"music", "rock"}, Completed: true},
		{Tags: []string{"music"}, WatchedSeconds: 30, Duration: 60},
		{Tags: nil, Completed: true},
	}
	aff := TagAffinity(history)
	assert.InDelta(t, 2.5, aff["music"], 1e-9)
	assert.InDelta(t, 2.0, aff["rock"], 1e-9)
	assert.Len(t, aff, 2)
}

func TestScoreTags(t *testing.T) {
	aff := map[string]float64{"music": 2, "rock": 0.5}
	assert.InDelta(t, 2.5, ScoreTags([]string{"music", "rock", "jazz"}, aff), 1e-9)
	assert.Zero(t, ScoreTags(nil, aff))
	assert.Zero(t, ScoreTags([]string{"sports"}, aff))
}

func TestAffinityDominatesViews(t *testing.T) {
	res := Rank(Input{
		History: []WatchRecord{{Tags: []string{"music"}, Completed: true}},
		Candidates: []Candidate{
			{ID: 1, Tags: []string{"music"}, Views: 10},
			{ID: 2, Tags: []string{"sports"}, Views: 100},
		},
		Now: testNow,
	})
	assert.Equal(t, []uint64{1, 2}, ids(res.Items))
	assert.Equal(t, FeedContentBased, res.FeedType)
	assert.True(t, res.Personalized)
	assert.Equal(t, []TagScore{{Tag: "music", Score: 2}}, res.TopTags)
}

func TestPreferenceColdStart(t *testing.T) {
	res := Rank(Input{
		PreferenceTags: []string{"gaming"},
		Candidates: []Candidate{
			{ID: 1, Tags: []string{"gaming"}, Views: 5},
			{ID: 2, Tags: []string{}, Views: 50},
		},
		Now: testNow,
	})
	assert.Equal(t, []uint64{1, 2}, ids(res.Items))
	assert.Equal(t, FeedPreferenceBased, res.FeedType)
	assert.InDelta(t, 1.0, res.Items[0].Score, 1e-9)
}

func TestPreferenceOverlapIsCountNotWeight(t *testing.T) {
	res := Rank(Input{
		PreferenceTags: []string{"gaming", "music"},
		Candidates: []Candidate{
			{ID: 1, Tags: []string{"gaming"}, Views: 500},
			{ID: 2, Tags: []string{"gaming", "music"}, Views: 1},
			{ID: 3, Tags: []string{"music"}, Views: 900},
		},
		Now: testNow,
	})
	assert.Equal(t, []uint64{2, 3, 1}, ids(res.Items))
}

func TestTrendingPopularColdStart(t *testing.T) {
	res := Rank(Input{
		Candidates: []Candidate{
			{ID: 1, Views: 1000, PublishedAt: testNow.Add(-72 * time.Hour)},
			{ID: 2, Views: 10, PublishedAt: testNow.Add(-2 * time.Hour)},
		},
		Now: testNow,
	})
	assert.Equal(t, []uint64{2, 1}, ids(res.Items))
	assert.Equal(t, FeedTrendingPopular, res.FeedType)
	assert.True(t, res.NeedsOnboarding)
	assert.False(t, res.Personalized)
}

func TestTrendingBucketsSortedByViews(t *testing.T) {
	res := Rank(Input{
		Candidates: []Candidate{
			{ID: 1, Views: 5, PublishedAt: testNow.Add(-1 * time.Hour)},
			{ID: 2, Views: 7, PublishedAt: testNow.Add(-100 * time.Hour)},
			{ID: 3, Views: 9, PublishedAt: testNow.Add(-47 * time.Hour)},
			{ID: 4, Views: 70, PublishedAt: testNow.Add(-49 * time.Hour)},
			// 正好48小时算“最近”
			{ID: 5, Views: 1, PublishedAt: testNow.Add(-RecentWindow)},
		},
		Now: testNow,
	})
	assert.Equal(t, []uint64{3, 1, 5, 4, 2}, ids(res.Items))
}

func TestAnonymousSortsByViewsOnly(t *testing.T) {
	cands := []Candidate{
		{ID: 1, Tags: []string{"music"}, Views: 3},
		{ID: 2, Views: 30, PublishedAt: testNow},
		{ID: 3, Tags: []string{"music"}, Views: 20},
		{ID: 4, Views: 30},
	}
	res := Rank(Input{
		Anonymous:      true,
		History:        []WatchRecord{{Tags: []string{"music"}, Completed: true}},
		PreferenceTags: []string{"music"},
		Candidates:     cands,
		Now:            testNow,
	})
	assert.Equal(t, []uint64{2, 4, 3, 1}, ids(res.Items))
	assert.Equal(t, FeedPopular, res.FeedType)
	assert.False(t, res.Personalized)
}

func TestCompletedDominatesPartial(t *testing.T) {
	for _, watched := range []float64{0, 10, 50, 99, 100, 1000} {
		completed := TagAffinity([]WatchRecord{{Tags: []string{"x"}, Completed: true}})["x"]
		partial := TagAffinity([]WatchRecord{{Tags: []string{"x"}, WatchedSeconds: watched, Duration: 100}})["x"]
		assert.Greater(t, completed, partial)
		assert.GreaterOrEqual(t, partial, 0.5)
		assert.LessOrEqual(t, partial, 1.0)
	}
}

func randomTags(r *rand.Rand) []string {
	pool := []string{"music", "sports", "gaming", "news", "tech", "travel"}
	n := r.Intn(4)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pool[r.Intn(len(pool))])
	}
	return NormalizeTags(out)
}

// 随机输入下的性质：分数非负、与历史无交集的视频得0分、排序是全序且稳定
func TestRankProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		var history []WatchRecord
		nHistory := r.Intn(6)
		for i := 0; i < nHistory; i++ {
			history = append(history, WatchRecord{
				Tags:           randomTags(r),
				WatchedSeconds: float64(r.Intn(200)),
				Duration:       float64(r.Intn(150)),
				Completed:      r.Intn(3) == 0,
			})
		}
		var cands []Candidate
		nCands := 1 + r.Intn(20)
		for i := 0; i < nCands; i++ {
			cands = append(cands, Candidate{ID: uint64(i + 1), Tags: randomTags(r), Views: uint64(r.Intn(5))})
		}

		res := Rank(Input{History: history, Candidates: cands, Now: testNow})
		require.Len(t, res.Items, len(cands))

		historyTags := map[string]bool{}
		for _, h := range history {
			for _, tag := range h.Tags {
				historyTags[tag] = true
			}
		}

		for _, it := range res.Items {
			assert.GreaterOrEqual(t, it.Score, 0.0)
			shares := false
			for _, tag := range it.Tags {
				if historyTags[tag] {
					shares = true
				}
			}
			if !shares {
				assert.Zero(t, it.Score)
			}
		}

		for i := 1; i < len(res.Items); i++ {
			a, b := res.Items[i-1], res.Items[i]
			switch {
			case a.Score != b.Score:
				assert.Greater(t, a.Score, b.Score)
			case a.Views != b.Views:
				assert.Greater(t, a.Views, b.Views)
			default:
				// 完全相同时保持输入顺序
				assert.Less(t, a.ID, b.ID)
			}
		}
	}
}

func TestTopTags(t *testing.T) {
	aff := map[string]float64{"a": 1, "b": 3, "c": 3, "d": 0.5, "e": 2, "f": 0.7}
	assert.Equal(t, []TagScore{
		{Tag: "b", Score: 3}, {Tag: "c", Score: 3}, {Tag: "e", Score: 2}, {Tag: "a", Score: 1}, {Tag: "f", Score: 0.7},
	}, TopTags(aff, 5))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, Paginate(items, 1, 2))
	assert.Equal(t, []int{5}, Paginate(items, 3, 2))
	assert.Equal(t, []int{}, Paginate(items, 4, 2))
	assert.Equal(t, []int{1, 2}, Paginate(items, 0, 2))
	assert.Equal(t, []int{}, Paginate(items, 1, 0))
	assert.Equal(t, []int{}, Paginate(items, 184467440737095517, 100))
	assert.Equal(t, []int{}, Paginate(items, math.MaxInt, 2))
}

func TestNormalizeAndFilterTags(t *testing.T) {
	assert.Equal(t, []string{"music", "rock"}, NormalizeTags([]string{" Music", "#rock", "music", ""}))
	assert.Equal(t, []string{"gaming"}, FilterAvailable([]string{"GAMING", "not-a-tag"}))
	assert.Equal(t, []string{"a", "b"}, ParseTagList("a, B ,,a"))
	assert.Equal(t, []string{}, ParseTagList("  "))
}

func TestHashtagTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "无话题", text: "just a clip", want: []string{}},
		{name: "大小写去重", text: "#Music live #rock and #music", want: []string{"music", "rock"}},
		{name: "标点截断", text: "#cooking, #vegan! #a-b", want: []string{"cooking", "vegan", "a"}},
		{name: "单独的井号", text: "# nope ##", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HashtagTags(tt.text))
		})
	}
}
