package recommend

import (
	"regexp"
	"strings"
)

// AvailableTags 平台预定义的标签，新用户引导时只能从这里选
var AvailableTags = []string{
	"programming", "javascript", "python", "webdev", "ai", "machinelearning",
	"gaming", "esports", "minecraft", "valorant",
	"music", "hiphop", "rock", "pop", "classical",
	"movies", "bollywood", "hollywood", "anime", "documentary",
	"sports", "cricket", "football", "basketball", "fitness",
	"cooking", "recipes", "vegan", "baking",
	"travel", "vlog", "adventure", "nature",
	"education", "science", "history", "math", "study",
	"comedy", "entertainment", "news", "tech",
}

var availableSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AvailableTags))
	for _, t := range AvailableTags {
		m[t] = struct{}{}
	}
	return m
}()

// NormalizeTags 小写、去空白、去重，保持第一次出现的顺序
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// HashtagTags 从文本里提取 #话题 当作标签，结果和NormalizeTags一致
func HashtagTags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return NormalizeTags(tags)
}

// FilterAvailable 只保留预定义标签里的那些
func FilterAvailable(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range NormalizeTags(tags) {
		if _, ok := availableSet[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// ParseTagList 解析表单里逗号分隔的标签
func ParseTagList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}
